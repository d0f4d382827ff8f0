package fieldpath

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalStruct(t *testing.T) {
	person := samplePerson()

	value, err := Marshal(person)
	require.NoError(t, err)
	require.Equal(t, value.String(),
		`{"name":"Albert","age":21,"address":{"street":"Mainaustrasse 21","city":"Zürich","zip":"8008"},"active":true}`)
}

func TestMarshalSlice(t *testing.T) {
	order := sampleOrder()

	value, err := Marshal(order)
	require.NoError(t, err)
	require.Equal(t, value.String(),
		`{"id":"order-1","items":[{"name":"pen","price":1.5},{"name":"book","price":12}]}`)
}

func TestMarshalPointer(t *testing.T) {
	type Struct struct {
		Next *Struct `json:"next"`
		Name string  `json:"name"`
	}

	value, err := Marshal(Struct{Name: "head", Next: &Struct{Name: "tail"}})
	require.NoError(t, err)
	require.Equal(t, value.String(),
		`{"next":{"next":null,"name":"tail"},"name":"head"}`)
}

func TestMarshalMapSortsKeys(t *testing.T) {
	type Struct struct {
		Values map[string]int `json:"values"`
	}

	value, err := Marshal(Struct{Values: map[string]int{"b": 2, "a": 1, "c": 3}})
	require.NoError(t, err)
	require.Equal(t, value.String(), `{"values":{"a":1,"b":2,"c":3}}`)
}

func TestMarshalNilRecord(t *testing.T) {
	var person *testPerson

	_, err := Marshal(person)
	require.ErrorIs(t, err, ErrNoValue)
}

func TestMarshalUnsupported(t *testing.T) {
	type Struct struct {
		Done chan bool `json:"done"`
	}

	_, err := Marshal(Struct{})

	var notSupported NotSupportedError
	require.ErrorAs(t, err, &notSupported)
	require.Equal(t, notSupported.Type.Kind(), reflect.Chan)
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	order := sampleOrder()

	value, err := Marshal(order)
	require.NoError(t, err)

	decoded, err := UnmarshalNew[testOrder](value)
	require.NoError(t, err)
	require.Equal(t, decoded, order)
}

func TestUnmarshalSkipsMissingFields(t *testing.T) {
	obj := Object()
	obj.SetField("name", String("Albert"))

	person := testPerson{Age: 50}
	require.NoError(t, Unmarshal(obj, &person))
	require.Equal(t, person, testPerson{Name: "Albert", Age: 50})
}

func TestUnmarshalRequireValues(t *testing.T) {
	obj := Object()
	obj.SetField("name", String("Albert"))

	type Struct struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	var record Struct
	err := NewNavigator().RequireValues().Unmarshal(obj, &record)
	require.ErrorIs(t, err, ErrNoValue)
}

func TestUnmarshalKindMismatch(t *testing.T) {
	obj := Object()
	obj.SetField("age", String("21"))

	var person testPerson
	require.ErrorIs(t, Unmarshal(obj, &person), ErrNotSupported)
}

func TestUnmarshalOverflow(t *testing.T) {
	type Struct struct {
		Small int8 `json:"small"`
	}

	obj := Object()
	obj.SetField("small", Int(1000))

	var record Struct
	require.Error(t, Unmarshal(obj, &record))
}

func TestUnmarshalNegativeUint(t *testing.T) {
	type Struct struct {
		Count uint16 `json:"count"`
	}

	obj := Object()
	obj.SetField("count", Int(-1))

	var record Struct
	require.ErrorIs(t, Unmarshal(obj, &record), ErrNotSupported)
}

func TestUnmarshalNeedsPointer(t *testing.T) {
	var person testPerson
	require.ErrorIs(t, Unmarshal(Object(), person), ErrNotSupported)
}

func TestUnmarshalNullPointer(t *testing.T) {
	type Struct struct {
		Next *testAddress `json:"next"`
	}

	obj := Object()
	obj.SetField("next", Null())

	record := Struct{Next: &testAddress{}}
	require.NoError(t, Unmarshal(obj, &record))
	require.Nil(t, record.Next)
}

func TestUnmarshalMap(t *testing.T) {
	type Struct struct {
		Values map[string]int `json:"values"`
	}

	values := Object()
	values.SetField("one", Int(1))
	values.SetField("two", Int(2))

	obj := Object()
	obj.SetField("values", values)

	var record Struct
	require.NoError(t, Unmarshal(obj, &record))
	require.Equal(t, record.Values, map[string]int{"one": 1, "two": 2})
}

func TestUnmarshalArrayFillsPrefix(t *testing.T) {
	type Struct struct {
		Triple [3]int `json:"triple"`
	}

	obj := Object()
	obj.SetField("triple", Array(Int(1), Int(2)))

	var record Struct
	require.NoError(t, Unmarshal(obj, &record))
	require.Equal(t, record.Triple, [3]int{1, 2, 0})
}

func TestUnmarshalConverterTypes(t *testing.T) {
	obj := Object()
	obj.SetField("title", String("deploy"))
	obj.SetField("priority", String("high"))
	obj.SetField("timeout", String("1h"))

	task, err := UnmarshalNew[testTask](obj)
	require.NoError(t, err)
	require.Equal(t, task, testTask{
		Title:    "deploy",
		Priority: priorityHigh,
		Timeout:  timeoutMinutes(60),
	})

	// bare numbers count in the target's own representation
	obj.SetField("priority", Int(1))
	obj.SetField("timeout", Int(15))

	task, err = UnmarshalNew[testTask](obj)
	require.NoError(t, err)
	require.Equal(t, task.Priority, priorityMedium)
	require.Equal(t, task.Timeout, timeoutMinutes(15))
}

func TestMarshalConverterTypes(t *testing.T) {
	task := testTask{Title: "deploy", Priority: priorityHigh, Timeout: timeoutMinutes(90)}

	value, err := Marshal(task)
	require.NoError(t, err)
	require.Equal(t, value.String(), `{"title":"deploy","priority":"HIGH","timeout":"90m"}`)
}

func TestMarshalRecursiveType(t *testing.T) {
	type Node struct {
		Name     string `json:"name"`
		Children []Node `json:"children"`
	}

	tree := Node{
		Name: "root",
		Children: []Node{
			{Name: "left", Children: []Node{}},
			{Name: "right", Children: []Node{{Name: "leaf", Children: []Node{}}}},
		},
	}

	value, err := Marshal(tree)
	require.NoError(t, err)

	decoded, err := UnmarshalNew[Node](value)
	require.NoError(t, err)
	require.Equal(t, decoded, tree)
}
