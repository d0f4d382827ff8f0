// Package fieldpath provides path-addressed access to the fields of Go structs.
// A path like "server.endpoints[2].timeout" is resolved against the struct's
// field layout; the addressed value is read or written through the dynamically
// typed [Value] representation, with automatic coercion into the field's exact
// static type (strings to numbers, strings to booleans, registered symbolic and
// duration-like types, and recursion into nested structs and slices).
//
// [Get] reads the value a path addresses, [Set] assigns it. [ValidPath] and
// [Paths] inspect a type's layout without touching a value. [Marshal] and
// [Unmarshal] convert whole records to and from the [Value] representation
// field by field; Get and Set delegate to them at the base of their traversal.
package fieldpath
