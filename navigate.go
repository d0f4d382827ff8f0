package fieldpath

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Navigator resolves string paths against struct layouts. The zero value is
// ready to use and reads field aliases from `json` struct tags. A Navigator
// is safe for concurrent use as long as no two calls mutate the same record.
type Navigator struct {
	// the struct tag that field aliases are read from
	structTag string

	// Fail Unmarshal with ErrNoValue if an object is missing a field
	requireValues bool

	// Caches indexed by reflect.Type
	fieldCache       sync.Map
	marshalerCache   sync.Map
	unmarshalerCache sync.Map
}

// The default Navigator instance.
var nav Navigator

func NewNavigator() *Navigator {
	return &Navigator{structTag: "json"}
}

// WithTag returns a Navigator that reads field aliases from the given struct
// tag instead of `json`.
func (n *Navigator) WithTag(structTag string) *Navigator {
	if n.structTag == structTag {
		return n
	}

	return &Navigator{
		structTag:     structTag,
		requireValues: n.requireValues,
	}
}

// RequireValues returns a Navigator whose Unmarshal fails with ErrNoValue
// when an object lacks a field of the target struct, instead of skipping it.
func (n *Navigator) RequireValues() *Navigator {
	if n.requireValues {
		return n
	}

	return &Navigator{
		structTag:     n.structTag,
		requireValues: true,
	}
}

func (n *Navigator) tag() string {
	if n.structTag == "" {
		return "json"
	}

	return n.structTag
}

func (n *Navigator) fieldsOf(ty reflect.Type) []fieldInfo {
	if cached, ok := n.fieldCache.Load(ty); ok {
		return cached.([]fieldInfo)
	}

	fields := addressableFields(ty, n.tag())
	n.fieldCache.Store(ty, fields)

	return fields
}

// Get resolves path against record and returns the addressed value. record
// must be a struct or a pointer to one. The second return value is false if
// the path is empty or malformed, names an unknown field, indexes out of
// bounds, or applies a segment to the wrong kind of value.
func Get(record any, path string) (Value, bool) {
	return nav.Get(record, path)
}

// Set resolves path against record and assigns value to the addressed
// element, coercing it into the element's exact static type. record must be
// a non-nil pointer to a struct. Set reports whether the assignment
// happened; on any failure the record is left unchanged.
func Set(record any, path string, value Value) bool {
	return nav.Set(record, path, value)
}

// ValidPath reports whether path resolves against the layout of T, following
// the same segment kind rules as [Get]. Element counts are a runtime
// property, so any index into a slice-typed field is statically valid.
func ValidPath[T any](path string) bool {
	return nav.ValidPath(reflect.TypeFor[T](), path)
}

// Paths returns every field path reachable from T, in declaration order,
// recursing into nested struct fields. Slice fields contribute only their
// own path since their length is a runtime property.
func Paths[T any]() []string {
	return nav.Paths(reflect.TypeFor[T]())
}

func (n *Navigator) Get(record any, path string) (Value, bool) {
	segments, err := Parse(path)
	if err != nil || len(segments) == 0 {
		return Value{}, false
	}

	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Value{}, false
		}

		rv = rv.Elem()
	}

	return n.getValue(rv, segments)
}

func (n *Navigator) getValue(current reflect.Value, segments []Segment) (Value, bool) {
	if len(segments) == 0 {
		// base case: serialize whatever the path addressed
		value, err := n.marshalValue(current)
		if err != nil {
			return Value{}, false
		}

		return value, true
	}

	for current.Kind() == reflect.Pointer {
		if current.IsNil() {
			return Value{}, false
		}

		current = current.Elem()
	}

	seg := segments[0]

	if seg.Kind == SegmentIndex {
		if current.Kind() != reflect.Slice && current.Kind() != reflect.Array {
			return Value{}, false
		}

		if seg.Index >= current.Len() {
			return Value{}, false
		}

		return n.getValue(current.Index(seg.Index), segments[1:])
	}

	if current.Kind() != reflect.Struct {
		return Value{}, false
	}

	fields := n.fieldsOf(current.Type())

	idx, ok := resolveField(fields, seg.Name)
	if !ok {
		return Value{}, false
	}

	return n.getValue(current.FieldByIndex(fields[idx].Index), segments[1:])
}

func (n *Navigator) Set(record any, path string, value Value) bool {
	segments, err := Parse(path)
	if err != nil || len(segments) == 0 {
		return false
	}

	rv := reflect.ValueOf(record)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}

	return n.setValue(rv.Elem(), segments, value)
}

func (n *Navigator) setValue(current reflect.Value, segments []Segment, value Value) bool {
	for current.Kind() == reflect.Pointer {
		if current.IsNil() {
			return false
		}

		current = current.Elem()
	}

	seg := segments[0]

	if seg.Kind == SegmentIndex {
		if current.Kind() != reflect.Slice && current.Kind() != reflect.Array {
			return false
		}

		if seg.Index >= current.Len() {
			return false
		}

		element := current.Index(seg.Index)
		if len(segments) == 1 {
			return n.coerce(element, value)
		}

		return n.setValue(element, segments[1:], value)
	}

	if current.Kind() != reflect.Struct {
		return false
	}

	fields := n.fieldsOf(current.Type())

	idx, ok := resolveField(fields, seg.Name)
	if !ok {
		return false
	}

	target := current.FieldByIndex(fields[idx].Index)
	if len(segments) == 1 {
		return n.coerce(target, value)
	}

	return n.setValue(target, segments[1:], value)
}

// coerce converts value into the exact static type of target and assigns it.
// The conversion builds the new value in a scratch slot, so a failure at any
// depth leaves target untouched.
func (n *Navigator) coerce(target reflect.Value, value Value) bool {
	if !target.CanSet() {
		return false
	}

	scratch := reflect.New(target.Type()).Elem()
	if !n.coerceInto(scratch, value) {
		return false
	}

	target.Set(scratch)
	return true
}

func (n *Navigator) coerceInto(target reflect.Value, value Value) bool {
	ty := target.Type()

	// registered symbolic and duration-like types take precedence
	if conv, ok := converterFor(ty); ok {
		return coerceConverted(target, conv, value)
	}

	switch ty.Kind() {
	case reflect.String:
		target.SetString(stringify(value))
		return true

	case reflect.Bool:
		b, ok := coerceBool(value)
		if !ok {
			return false
		}

		target.SetBool(b)
		return true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := coerceInt(value)
		if !ok || target.OverflowInt(i) {
			return false
		}

		target.SetInt(i)
		return true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, ok := coerceInt(value)
		if !ok || i < 0 {
			return false
		}

		if target.OverflowUint(uint64(i)) {
			return false
		}

		target.SetUint(uint64(i))
		return true

	case reflect.Float32, reflect.Float64:
		f, ok := coerceFloat(value)
		if !ok || target.OverflowFloat(f) {
			return false
		}

		target.SetFloat(f)
		return true

	case reflect.Pointer:
		element := reflect.New(ty.Elem())
		if !n.coerceInto(element.Elem(), value) {
			return false
		}

		target.Set(element)
		return true

	case reflect.Slice:
		if value.Kind() != KindArray {
			return false
		}

		slice := reflect.MakeSlice(ty, 0, value.Len())
		for i := 0; i < value.Len(); i++ {
			element := reflect.New(ty.Elem()).Elem()
			if !n.coerceInto(element, value.At(i)) {
				return false
			}

			slice = reflect.Append(slice, element)
		}

		target.Set(slice)
		return true

	case reflect.Array:
		if value.Kind() != KindArray || value.Len() != ty.Len() {
			return false
		}

		for i := 0; i < ty.Len(); i++ {
			if !n.coerceInto(target.Index(i), value.At(i)) {
				return false
			}
		}

		return true

	case reflect.Struct, reflect.Map:
		if value.Kind() != KindObject {
			return false
		}

		// whole records go through the mechanical deserializer
		u, err := n.unmarshalerOf(typeSet{}, ty)
		if err != nil {
			return false
		}

		return u(value, target) == nil

	default:
		return false
	}
}

func coerceConverted(target reflect.Value, conv Converter, value Value) bool {
	switch value.Kind() {
	case KindString:
		parsed, ok := conv.FromText(value.Str())
		if !ok || !parsed.Type().AssignableTo(target.Type()) {
			return false
		}

		target.Set(parsed)
		return true

	case KindNumber:
		// bare numbers count in the target's own representation: the
		// underlying code for symbolic types, the native unit for durations
		switch target.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if target.OverflowInt(value.Int()) {
				return false
			}

			target.SetInt(value.Int())
			return true

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if value.Int() < 0 || target.OverflowUint(uint64(value.Int())) {
				return false
			}

			target.SetUint(uint64(value.Int()))
			return true

		case reflect.Float32, reflect.Float64:
			if target.OverflowFloat(value.Float()) {
				return false
			}

			target.SetFloat(value.Float())
			return true
		}
	}

	return false
}

// stringify renders a value the way a string field receives it: strings are
// copied verbatim, everything else renders as JSON text.
func stringify(value Value) string {
	if value.Kind() == KindString {
		return value.Str()
	}

	return value.String()
}

func coerceBool(value Value) (bool, bool) {
	switch value.Kind() {
	case KindBool:
		return value.Bool(), true

	case KindNumber:
		return value.Float() != 0, true

	case KindString:
		switch strings.ToLower(value.Str()) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}

	return false, false
}

// coerceInt converts a number or string value into an integer. Strings parse
// their leading numeric run and ignore the rest, so "123.45" yields 123;
// only a string without any leading digits fails.
func coerceInt(value Value) (int64, bool) {
	switch value.Kind() {
	case KindNumber:
		return value.Int(), true

	case KindString:
		return leadingInt(value.Str())
	}

	return 0, false
}

func coerceFloat(value Value) (float64, bool) {
	switch value.Kind() {
	case KindNumber:
		return value.Float(), true

	case KindString:
		return leadingFloat(value.Str())
	}

	return 0, false
}

// leadingInt parses the leading [+-]?digits run of s and stops at the first
// non-digit instead of failing.
func leadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t")

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}

	if i == start {
		return 0, false
	}

	parsed, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, false
	}

	return parsed, true
}

// leadingFloat parses the leading numeric run of s, including fractional part
// and exponent, and stops at the first character that cannot extend it.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t")

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}

	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}

		if digits > 0 {
			i = j
		}
	}

	if digits == 0 {
		return 0, false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}

		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}

		if k > j {
			i = k
		}
	}

	parsed, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, false
	}

	return parsed, true
}

func (n *Navigator) ValidPath(ty reflect.Type, path string) bool {
	segments, err := Parse(path)
	if err != nil || len(segments) == 0 {
		return false
	}

	return n.validSegments(ty, segments)
}

func (n *Navigator) validSegments(ty reflect.Type, segments []Segment) bool {
	if len(segments) == 0 {
		return true
	}

	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	seg := segments[0]

	if seg.Kind == SegmentIndex {
		switch ty.Kind() {
		case reflect.Slice:
			// length is a runtime property, any index resolves statically
		case reflect.Array:
			if seg.Index >= ty.Len() {
				return false
			}
		default:
			return false
		}

		return n.validSegments(ty.Elem(), segments[1:])
	}

	if ty.Kind() != reflect.Struct {
		return false
	}

	fields := n.fieldsOf(ty)

	idx, ok := resolveField(fields, seg.Name)
	if !ok {
		return false
	}

	return n.validSegments(fields[idx].Type, segments[1:])
}

func (n *Navigator) Paths(ty reflect.Type) []string {
	var paths []string
	n.collectPaths(&paths, ty, "")
	return paths
}

func (n *Navigator) collectPaths(paths *[]string, ty reflect.Type, prefix string) {
	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	if ty.Kind() != reflect.Struct {
		return
	}

	for _, fi := range n.fieldsOf(ty) {
		if !pathable(fi.Type) {
			continue
		}

		path := fi.Name
		if prefix != "" {
			path = prefix + "." + fi.Name
		}

		*paths = append(*paths, path)

		fieldType := fi.Type
		for fieldType.Kind() == reflect.Pointer {
			fieldType = fieldType.Elem()
		}

		if _, registered := converterFor(fieldType); registered {
			// registered types are terminal values
			continue
		}

		if fieldType.Kind() == reflect.Struct {
			n.collectPaths(paths, fieldType, path)
		}
	}
}

// pathable reports whether a field of this type can be addressed by a path
// at all. Channels, funcs and interfaces live outside the value model.
func pathable(ty reflect.Type) bool {
	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	switch ty.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer,
		reflect.Complex64, reflect.Complex128:
		return false
	default:
		return true
	}
}
