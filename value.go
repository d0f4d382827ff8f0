package fieldpath

// Kind identifies the variant held by a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is the dynamically typed representation that crosses the boundary
// between statically typed struct fields and untyped external data. It is a
// tagged union of null, bool, number, string, array and object. A Value owns
// its data and has no relation to any record it was read from or written to.
//
// Numbers keep the distinction between integer and floating point payloads so
// int64 fields survive a round trip without a float64 detour; [Value.Int] and
// [Value.Float] expose both views.
type Value struct {
	kind Kind

	b     bool
	i     int64
	f     float64
	isInt bool
	s     string

	items []Value

	// object fields, with keys kept in insertion order
	keys []string
	obj  map[string]Value
}

// Null returns the null Value. The zero Value is null as well.
func Null() Value {
	return Value{}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int returns a number Value holding an integer.
func Int(i int64) Value {
	return Value{kind: KindNumber, i: i, f: float64(i), isInt: true}
}

// Float returns a number Value holding a floating point number.
func Float(f float64) Value {
	return Value{kind: KindNumber, i: int64(f), f: f}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Array returns an array Value of the given elements.
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: items}
}

// Object returns an empty object Value. Add fields with [Value.SetField].
func Object() Value {
	return Value{kind: KindObject, obj: map[string]Value{}}
}

// Kind returns the variant held by the Value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the Value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Bool returns the boolean payload, or false for any other kind.
func (v Value) Bool() bool {
	return v.kind == KindBool && v.b
}

// Int returns the numeric payload as an integer, truncating a floating point
// payload. It returns 0 for non-numbers.
func (v Value) Int() int64 {
	if v.kind != KindNumber {
		return 0
	}

	return v.i
}

// Float returns the numeric payload, or 0 for non-numbers.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return 0
	}

	return v.f
}

// IsInt reports whether the Value holds an integer number.
func (v Value) IsInt() bool {
	return v.kind == KindNumber && v.isInt
}

// Str returns the string payload, or "" for any other kind.
// See [Value.String] for a textual rendering of arbitrary values.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}

	return v.s
}

// Len returns the element count of an array or the field count of an object,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.keys)
	default:
		return 0
	}
}

// At returns the i-th element of an array Value, or null if the Value is not
// an array or the index is out of range.
func (v Value) At(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}
	}

	return v.items[i]
}

// Field returns the named field of an object Value.
func (v Value) Field(key string) (Value, bool) {
	fv, ok := v.obj[key]
	return fv, ok
}

// Keys returns an object's field names in insertion order.
func (v Value) Keys() []string {
	return v.keys
}

// SetField adds or replaces a field of an object Value, keeping insertion
// order. It panics if the Value is not an object.
func (v *Value) SetField(key string, value Value) {
	if v.kind != KindObject {
		panic("SetField on non-object Value")
	}

	if _, ok := v.obj[key]; !ok {
		v.keys = append(v.keys, key)
	}

	v.obj[key] = value
}
