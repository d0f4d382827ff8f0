package fieldpath

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
)

// Converter is a to-text / from-text capability pair for one static type.
// FromText reports failure through its second return value; ToText returns ""
// when the value has no textual form (an enum code without a name).
type Converter struct {
	ToText   func(v reflect.Value) string
	FromText func(text string) (reflect.Value, bool)
}

// converters is the process-wide converter registry. It must be fully
// populated before the first path operation executes; afterwards it is
// read-only and safe for unsynchronized concurrent reads.
var converters = map[reflect.Type]Converter{}

func converterFor(ty reflect.Type) (Converter, bool) {
	conv, ok := converters[ty]
	return conv, ok
}

// RegisterConverter installs a textual converter for T. Values of T
// serialize through toText and parse through fromText wherever a path
// operation reads or writes a field of that type.
//
// Must be called before the first path operation that touches T.
func RegisterConverter[T any](toText func(T) string, fromText func(string) (T, bool)) {
	converters[reflect.TypeFor[T]()] = Converter{
		ToText: func(v reflect.Value) string {
			return toText(v.Interface().(T))
		},
		FromText: func(text string) (reflect.Value, bool) {
			parsed, ok := fromText(text)
			if !ok {
				return reflect.Value{}, false
			}

			return reflect.ValueOf(parsed), true
		},
	}
}

// RegisterEnum installs a symbolic converter for the enumerated type E,
// pairing each value with its canonical name. Parsing matches names
// case-insensitively; a string that matches no name is parsed as the
// underlying integer code instead.
func RegisterEnum[E constraints.Integer](names map[E]string) {
	byName := make(map[string]E, len(names))
	for value, name := range names {
		byName[strings.ToLower(name)] = value
	}

	RegisterConverter(
		func(v E) string {
			return names[v]
		},
		func(text string) (E, bool) {
			if value, ok := byName[strings.ToLower(text)]; ok {
				return value, true
			}

			// no name matched, fall back to the underlying integer code
			code, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
			if err != nil {
				return 0, false
			}

			return E(code), true
		},
	)
}

// RegisterDuration installs a duration-like converter for T. Values of T
// count in the given native unit: with a native unit of time.Minute the bare
// number 5 means five minutes. Strings parse as a numeric literal with an
// optional unit suffix (s, sec, seconds, m, min, minutes, h, hour, hours, d,
// day, days, ms, milliseconds); a missing suffix means the native unit.
// Unit conversion goes through a float64 intermediate truncated into T.
func RegisterDuration[T constraints.Integer | constraints.Float](unit time.Duration) {
	RegisterConverter(
		func(v T) string {
			return strconv.FormatFloat(float64(v), 'f', -1, 64) + nativeSuffixes[unit]
		},
		func(text string) (T, bool) {
			count, ok := parseDuration(text, unit)
			if !ok {
				return 0, false
			}

			return T(count), true
		},
	)
}

var durationUnits = map[string]time.Duration{
	"ms": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

var nativeSuffixes = map[time.Duration]string{
	time.Millisecond: "ms",
	time.Second:      "s",
	time.Minute:      "m",
	time.Hour:        "h",
	24 * time.Hour:   "d",
}

// parseDuration parses a duration literal and returns its count expressed in
// the native unit. Surrounding whitespace is trimmed; the numeric part may
// carry a fractional component; an unknown unit suffix fails the parse.
func parseDuration(text string, native time.Duration) (float64, bool) {
	text = strings.TrimSpace(text)

	end := 0
	for end < len(text) && (isDigit(text[end]) || text[end] == '.') {
		end++
	}

	if end == 0 {
		return 0, false
	}

	number, err := strconv.ParseFloat(text[:end], 64)
	if err != nil {
		return 0, false
	}

	unit := native
	if suffix := strings.TrimSpace(text[end:]); suffix != "" {
		var ok bool
		unit, ok = durationUnits[strings.ToLower(suffix)]
		if !ok {
			return 0, false
		}
	}

	return number * float64(unit) / float64(native), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
