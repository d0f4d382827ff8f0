package fieldpath

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

var ErrNoValue = errors.New("no value")
var ErrNotSupported = errors.New("not supported")

type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}

// Marshal converts a record into its [Value] representation field by field:
// structs become objects with their fields in declaration order, slices and
// arrays become arrays, registered symbolic and duration-like types become
// their textual form, nil pointers become null and primitives map onto their
// native kinds.
func Marshal(record any) (Value, error) {
	return nav.Marshal(record)
}

// Unmarshal populates target, which must be a non-nil pointer, from the
// given [Value] field by field. Fields missing from an object are skipped
// unless the Navigator was built with [Navigator.RequireValues].
func Unmarshal(value Value, target any) error {
	return nav.Unmarshal(value, target)
}

// UnmarshalNew decodes a Value into a freshly constructed T.
func UnmarshalNew[T any](value Value) (T, error) {
	var target T
	err := nav.Unmarshal(value, &target)
	return target, err
}

// A marshaler renders a reflect.Value of one static type into a Value.
type marshaler func(reflect.Value) (Value, error)

// An unmarshaler populates a reflect.Value of one static type from a Value.
type unmarshaler func(Value, reflect.Value) error

// A set of types that are currently in construction
type typeSet map[reflect.Type]struct{}

func (n *Navigator) Marshal(record any) (Value, error) {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Value{}, ErrNoValue
		}

		rv = rv.Elem()
	}

	return n.marshalValue(rv)
}

func (n *Navigator) marshalValue(v reflect.Value) (Value, error) {
	m, err := n.marshalerOf(typeSet{}, v.Type())
	if err != nil {
		return Value{}, err
	}

	return m(v)
}

func (n *Navigator) Unmarshal(value Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNotSupported
	}

	targetValue := rv.Elem()

	u, err := n.unmarshalerOf(typeSet{}, targetValue.Type())
	if err != nil {
		return err
	}

	return u(value, targetValue)
}

func (n *Navigator) marshalerOf(inConstruction typeSet, ty reflect.Type) (marshaler, error) {
	if cached, ok := n.marshalerCache.Load(ty); ok {
		return cached.(marshaler), nil
	}

	if _, ok := inConstruction[ty]; ok {
		// detected a cycle. return a marshaler that does a cache lookup when
		// executed. we assume that the actual marshaler will be in the cache
		// once this marshaler is executed.
		lazyMarshaler := func(v reflect.Value) (Value, error) {
			cached, _ := n.marshalerCache.Load(ty)
			return cached.(marshaler)(v)
		}

		return lazyMarshaler, nil
	}

	inConstruction[ty] = struct{}{}

	m, err := n.makeMarshalerOf(inConstruction, ty)
	if err != nil {
		return nil, err
	}

	n.marshalerCache.Store(ty, m)

	return m, nil
}

func (n *Navigator) makeMarshalerOf(inConstruction typeSet, ty reflect.Type) (marshaler, error) {
	if conv, ok := converterFor(ty); ok {
		return makeMarshalConverted(conv), nil
	}

	switch ty.Kind() {
	case reflect.Bool:
		return marshalBool, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return marshalInt, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return marshalUint, nil

	case reflect.Float32, reflect.Float64:
		return marshalFloat, nil

	case reflect.String:
		return marshalString, nil

	case reflect.Pointer:
		return n.makeMarshalPointer(inConstruction, ty)

	case reflect.Struct:
		return n.makeMarshalStruct(inConstruction, ty)

	case reflect.Slice, reflect.Array:
		return n.makeMarshalSlice(inConstruction, ty)

	case reflect.Map:
		return n.makeMarshalMap(inConstruction, ty)

	default:
		return nil, NotSupportedError{Type: ty}
	}
}

func makeMarshalConverted(conv Converter) marshaler {
	return func(v reflect.Value) (Value, error) {
		if text := conv.ToText(v); text != "" {
			return String(text), nil
		}

		// no textual form, fall back to the underlying numeric code
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Int(v.Int()), nil

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return Int(int64(v.Uint())), nil

		case reflect.Float32, reflect.Float64:
			return Float(v.Float()), nil
		}

		return Value{}, NotSupportedError{Type: v.Type()}
	}
}

func (n *Navigator) makeMarshalStruct(inConstruction typeSet, ty reflect.Type) (marshaler, error) {
	fields := n.fieldsOf(ty)

	var marshalers []marshaler
	for _, fi := range fields {
		m, err := n.marshalerOf(inConstruction, fi.Type)
		if err != nil {
			return nil, fmt.Errorf("marshaler for field %q: %w", fi.Name, err)
		}

		marshalers = append(marshalers, m)
	}

	m := func(v reflect.Value) (Value, error) {
		obj := Object()

		for idx, fi := range fields {
			fieldValue, err := marshalers[idx](v.FieldByIndex(fi.Index))
			if err != nil {
				return Value{}, fmt.Errorf("marshal field %q of %q: %w", fi.Name, v.Type(), err)
			}

			obj.SetField(fi.Name, fieldValue)
		}

		return obj, nil
	}

	return m, nil
}

func (n *Navigator) makeMarshalSlice(inConstruction typeSet, ty reflect.Type) (marshaler, error) {
	elementMarshaler, err := n.marshalerOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("marshaler for element type %q: %w", ty, err)
	}

	m := func(v reflect.Value) (Value, error) {
		items := make([]Value, 0, v.Len())

		for i := 0; i < v.Len(); i++ {
			item, err := elementMarshaler(v.Index(i))
			if err != nil {
				return Value{}, fmt.Errorf("marshal element idx=%d: %w", i, err)
			}

			items = append(items, item)
		}

		return Array(items...), nil
	}

	return m, nil
}

func (n *Navigator) makeMarshalMap(inConstruction typeSet, ty reflect.Type) (marshaler, error) {
	if ty.Key().Kind() != reflect.String {
		return nil, NotSupportedError{Type: ty}
	}

	valueMarshaler, err := n.marshalerOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("marshaler for value type %q: %w", ty, err)
	}

	m := func(v reflect.Value) (Value, error) {
		keys := make([]string, 0, v.Len())
		for _, key := range v.MapKeys() {
			keys = append(keys, key.String())
		}

		// map iteration order is random, keep the object deterministic
		slices.Sort(keys)

		obj := Object()
		for _, key := range keys {
			keyValue := reflect.ValueOf(key).Convert(ty.Key())

			fieldValue, err := valueMarshaler(v.MapIndex(keyValue))
			if err != nil {
				return Value{}, fmt.Errorf("marshal key %q: %w", key, err)
			}

			obj.SetField(key, fieldValue)
		}

		return obj, nil
	}

	return m, nil
}

func (n *Navigator) makeMarshalPointer(inConstruction typeSet, ty reflect.Type) (marshaler, error) {
	pointeeMarshaler, err := n.marshalerOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, err
	}

	m := func(v reflect.Value) (Value, error) {
		if v.IsNil() {
			return Null(), nil
		}

		return pointeeMarshaler(v.Elem())
	}

	return m, nil
}

func marshalBool(v reflect.Value) (Value, error) {
	return Bool(v.Bool()), nil
}

func marshalInt(v reflect.Value) (Value, error) {
	return Int(v.Int()), nil
}

func marshalUint(v reflect.Value) (Value, error) {
	return Int(int64(v.Uint())), nil
}

func marshalFloat(v reflect.Value) (Value, error) {
	return Float(v.Float()), nil
}

func marshalString(v reflect.Value) (Value, error) {
	return String(v.String()), nil
}

func (n *Navigator) unmarshalerOf(inConstruction typeSet, ty reflect.Type) (unmarshaler, error) {
	if cached, ok := n.unmarshalerCache.Load(ty); ok {
		return cached.(unmarshaler), nil
	}

	if _, ok := inConstruction[ty]; ok {
		lazyUnmarshaler := func(value Value, target reflect.Value) error {
			cached, _ := n.unmarshalerCache.Load(ty)
			return cached.(unmarshaler)(value, target)
		}

		return lazyUnmarshaler, nil
	}

	inConstruction[ty] = struct{}{}

	u, err := n.makeUnmarshalerOf(inConstruction, ty)
	if err != nil {
		return nil, err
	}

	n.unmarshalerCache.Store(ty, u)

	return u, nil
}

func (n *Navigator) makeUnmarshalerOf(inConstruction typeSet, ty reflect.Type) (unmarshaler, error) {
	if conv, ok := converterFor(ty); ok {
		return makeUnmarshalConverted(conv), nil
	}

	switch ty.Kind() {
	case reflect.Bool:
		return unmarshalBool, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return unmarshalInt, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return unmarshalUint, nil

	case reflect.Float32, reflect.Float64:
		return unmarshalFloat, nil

	case reflect.String:
		return unmarshalString, nil

	case reflect.Pointer:
		return n.makeUnmarshalPointer(inConstruction, ty)

	case reflect.Struct:
		return n.makeUnmarshalStruct(inConstruction, ty)

	case reflect.Slice:
		return n.makeUnmarshalSlice(inConstruction, ty)

	case reflect.Array:
		return n.makeUnmarshalArray(inConstruction, ty)

	case reflect.Map:
		return n.makeUnmarshalMap(inConstruction, ty)

	default:
		return nil, NotSupportedError{Type: ty}
	}
}

func makeUnmarshalConverted(conv Converter) unmarshaler {
	return func(value Value, target reflect.Value) error {
		switch value.Kind() {
		case KindString:
			parsed, ok := conv.FromText(value.Str())
			if !ok || !parsed.Type().AssignableTo(target.Type()) {
				return fmt.Errorf("parse %q as %q: %w", value.Str(), target.Type(), ErrNotSupported)
			}

			target.Set(parsed)
			return nil

		case KindNumber:
			// bare numbers count in the target's own representation
			if !coerceConverted(target, conv, value) {
				return fmt.Errorf("invalid %q value %s: %w", target.Type(), value, ErrNotSupported)
			}

			return nil
		}

		return ErrNotSupported
	}
}

func (n *Navigator) makeUnmarshalStruct(inConstruction typeSet, ty reflect.Type) (unmarshaler, error) {
	fields := n.fieldsOf(ty)

	var unmarshalers []unmarshaler
	for _, fi := range fields {
		u, err := n.unmarshalerOf(inConstruction, fi.Type)
		if err != nil {
			return nil, fmt.Errorf("unmarshaler for field %q: %w", fi.Name, err)
		}

		unmarshalers = append(unmarshalers, u)
	}

	u := func(value Value, target reflect.Value) error {
		if value.Kind() != KindObject {
			return ErrNotSupported
		}

		for idx, fi := range fields {
			fieldValue, ok := value.Field(fi.Name)
			if !ok {
				if n.requireValues {
					return fmt.Errorf("field %q: %w", fi.Name, ErrNoValue)
				}

				// It is okay to not get a value at all,
				// in that case we just skip the field
				continue
			}

			fieldTarget := target.FieldByIndex(fi.Index)
			if err := unmarshalers[idx](fieldValue, fieldTarget); err != nil {
				return fmt.Errorf("set field %q on %q: %w", fi.Name, target.Type(), err)
			}
		}

		return nil
	}

	return u, nil
}

func (n *Navigator) makeUnmarshalSlice(inConstruction typeSet, ty reflect.Type) (unmarshaler, error) {
	elementUnmarshaler, err := n.unmarshalerOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("unmarshaler for element type %q: %w", ty, err)
	}

	u := func(value Value, target reflect.Value) error {
		if value.Kind() != KindArray {
			return ErrNotSupported
		}

		// build the whole slice before committing it, a failed element
		// must not leave a partial result behind
		slice := reflect.MakeSlice(ty, 0, value.Len())

		for i := 0; i < value.Len(); i++ {
			element := reflect.New(ty.Elem()).Elem()
			if err := elementUnmarshaler(value.At(i), element); err != nil {
				return fmt.Errorf("set element idx=%d: %w", i, err)
			}

			slice = reflect.Append(slice, element)
		}

		target.Set(slice)
		return nil
	}

	return u, nil
}

func (n *Navigator) makeUnmarshalArray(inConstruction typeSet, ty reflect.Type) (unmarshaler, error) {
	elementUnmarshaler, err := n.unmarshalerOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("unmarshaler for element type %q: %w", ty, err)
	}

	// number of elements in the array
	elementCount := ty.Len()

	u := func(value Value, target reflect.Value) error {
		if value.Kind() != KindArray {
			return ErrNotSupported
		}

		for i := 0; i < elementCount && i < value.Len(); i++ {
			if err := elementUnmarshaler(value.At(i), target.Index(i)); err != nil {
				return fmt.Errorf("set element idx=%d: %w", i, err)
			}
		}

		return nil
	}

	return u, nil
}

func (n *Navigator) makeUnmarshalMap(inConstruction typeSet, ty reflect.Type) (unmarshaler, error) {
	if ty.Key().Kind() != reflect.String {
		return nil, NotSupportedError{Type: ty}
	}

	valueUnmarshaler, err := n.unmarshalerOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("unmarshaler for value type %q: %w", ty, err)
	}

	u := func(value Value, target reflect.Value) error {
		if value.Kind() != KindObject {
			return ErrNotSupported
		}

		mapTarget := reflect.MakeMap(ty)

		for _, key := range value.Keys() {
			fieldValue, _ := value.Field(key)

			valueTarget := reflect.New(ty.Elem()).Elem()
			if err := valueUnmarshaler(fieldValue, valueTarget); err != nil {
				return fmt.Errorf("set key %q: %w", key, err)
			}

			keyTarget := reflect.ValueOf(key).Convert(ty.Key())
			mapTarget.SetMapIndex(keyTarget, valueTarget)
		}

		target.Set(mapTarget)
		return nil
	}

	return u, nil
}

func (n *Navigator) makeUnmarshalPointer(inConstruction typeSet, ty reflect.Type) (unmarshaler, error) {
	pointeeType := ty.Elem()

	pointeeUnmarshaler, err := n.unmarshalerOf(inConstruction, pointeeType)
	if err != nil {
		return nil, err
	}

	u := func(value Value, target reflect.Value) error {
		if value.IsNull() {
			target.SetZero()
			return nil
		}

		// newValue is now a pointer to an instance of the pointeeType
		newValue := reflect.New(pointeeType)
		if err := pointeeUnmarshaler(value, newValue.Elem()); err != nil {
			return err
		}

		target.Set(newValue)
		return nil
	}

	return u, nil
}

func unmarshalBool(value Value, target reflect.Value) error {
	if value.Kind() != KindBool {
		return fmt.Errorf("get bool value: %w", ErrNotSupported)
	}

	target.SetBool(value.Bool())
	return nil
}

func unmarshalInt(value Value, target reflect.Value) error {
	if value.Kind() != KindNumber {
		return fmt.Errorf("get int value: %w", ErrNotSupported)
	}

	intValue := value.Int()
	if target.OverflowInt(intValue) {
		return fmt.Errorf("invalid %q value %d: %w", target.Type(), intValue, strconv.ErrRange)
	}

	target.SetInt(intValue)
	return nil
}

func unmarshalUint(value Value, target reflect.Value) error {
	if value.Kind() != KindNumber {
		return fmt.Errorf("get uint value: %w", ErrNotSupported)
	}

	intValue := value.Int()
	if intValue < 0 {
		return fmt.Errorf("invalid uint value %d: %w", intValue, ErrNotSupported)
	}

	if target.OverflowUint(uint64(intValue)) {
		return fmt.Errorf("invalid %q value %d: %w", target.Type(), intValue, strconv.ErrRange)
	}

	target.SetUint(uint64(intValue))
	return nil
}

func unmarshalFloat(value Value, target reflect.Value) error {
	if value.Kind() != KindNumber {
		return fmt.Errorf("get float value: %w", ErrNotSupported)
	}

	target.SetFloat(value.Float())
	return nil
}

func unmarshalString(value Value, target reflect.Value) error {
	if value.Kind() != KindString {
		return fmt.Errorf("get string value: %w", ErrNotSupported)
	}

	target.SetString(value.Str())
	return nil
}
