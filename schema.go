package fieldpath

import "reflect"

// SchemaOf describes the shape of T as a json-schema-like [Value] object.
// Structs become objects with a "properties" member listing their fields in
// declaration order, slices and arrays become arrays with an "items" member,
// and registered symbolic and duration-like types appear as strings since
// that is their serialized form.
func SchemaOf[T any]() Value {
	var instance T
	return nav.Schema(reflect.TypeOf(&instance).Elem())
}

func (n *Navigator) Schema(ty reflect.Type) Value {
	return n.schemaOf(typeSet{}, ty)
}

func (n *Navigator) schemaOf(seen typeSet, ty reflect.Type) Value {
	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	if _, ok := converterFor(ty); ok {
		return typedSchema("string")
	}

	switch ty.Kind() {
	case reflect.Bool:
		return typedSchema("boolean")

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return typedSchema("integer")

	case reflect.Float32, reflect.Float64:
		return typedSchema("number")

	case reflect.String:
		return typedSchema("string")

	case reflect.Slice, reflect.Array:
		schema := typedSchema("array")
		schema.SetField("items", n.schemaOf(seen, ty.Elem()))
		return schema

	case reflect.Struct:
		if _, ok := seen[ty]; ok {
			// break the cycle, describe the nested occurrence by name only
			schema := typedSchema("object")
			schema.SetField("description", String(ty.String()))
			return schema
		}

		seen[ty] = struct{}{}
		defer delete(seen, ty)

		properties := Object()
		for _, fi := range n.fieldsOf(ty) {
			if !pathable(fi.Type) {
				continue
			}

			properties.SetField(fi.Name, n.schemaOf(seen, fi.Type))
		}

		schema := typedSchema("object")
		schema.SetField("properties", properties)
		return schema

	case reflect.Map:
		return typedSchema("object")

	default:
		schema := typedSchema("object")
		schema.SetField("description", String(ty.String()))
		return schema
	}
}

func typedSchema(kind string) Value {
	obj := Object()
	obj.SetField("type", String(kind))
	return obj
}
