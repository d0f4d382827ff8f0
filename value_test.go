package fieldpath

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueKinds(t *testing.T) {
	require.Equal(t, Null().Kind(), KindNull)
	require.Equal(t, Bool(true).Kind(), KindBool)
	require.Equal(t, Int(1).Kind(), KindNumber)
	require.Equal(t, Float(1.5).Kind(), KindNumber)
	require.Equal(t, String("x").Kind(), KindString)
	require.Equal(t, Array().Kind(), KindArray)
	require.Equal(t, Object().Kind(), KindObject)

	// the zero Value is null
	require.True(t, Value{}.IsNull())
}

func TestValueNumbers(t *testing.T) {
	i := Int(42)
	require.True(t, i.IsInt())
	require.Equal(t, i.Int(), int64(42))
	require.Equal(t, i.Float(), 42.0)

	f := Float(3.75)
	require.False(t, f.IsInt())
	require.Equal(t, f.Float(), 3.75)
	require.Equal(t, f.Int(), int64(3))
}

func TestValueArray(t *testing.T) {
	arr := Array(Int(1), String("two"), Bool(true))
	require.Equal(t, arr.Len(), 3)
	require.Equal(t, arr.At(1).Str(), "two")

	// out of range yields null
	require.True(t, arr.At(3).IsNull())
	require.True(t, arr.At(-1).IsNull())
}

func TestValueObject(t *testing.T) {
	obj := Object()
	obj.SetField("b", Int(1))
	obj.SetField("a", Int(2))
	obj.SetField("c", Int(3))

	// keys come back in insertion order, not sorted
	require.Equal(t, obj.Keys(), []string{"b", "a", "c"})
	require.Equal(t, obj.Len(), 3)

	a, ok := obj.Field("a")
	require.True(t, ok)
	require.Equal(t, a.Int(), int64(2))

	_, ok = obj.Field("missing")
	require.False(t, ok)

	// replacing a field keeps its original position
	obj.SetField("a", Int(9))
	require.Equal(t, obj.Keys(), []string{"b", "a", "c"})
}

func TestValueSetFieldPanics(t *testing.T) {
	v := Int(1)
	require.Panics(t, func() { v.SetField("x", Null()) })
}

func TestValueJSON(t *testing.T) {
	obj := Object()
	obj.SetField("name", String("Albert"))
	obj.SetField("age", Int(21))
	obj.SetField("height", Float(1.76))
	obj.SetField("tags", Array(String("foo"), String("bar")))
	obj.SetField("address", Null())
	obj.SetField("accepted", Bool(true))

	require.Equal(t, obj.String(),
		`{"name":"Albert","age":21,"height":1.76,"tags":["foo","bar"],"address":null,"accepted":true}`)
}

func TestValueJSONRoundTrip(t *testing.T) {
	text := `{"name":"Albert","age":21,"height":1.76,"tags":["foo","bar"],"ok":true,"nothing":null}`

	var v Value
	require.NoError(t, json.Unmarshal([]byte(text), &v))

	require.Equal(t, v.Kind(), KindObject)
	require.Equal(t, v.Keys(), []string{"name", "age", "height", "tags", "ok", "nothing"})

	age, _ := v.Field("age")
	require.True(t, age.IsInt())
	require.Equal(t, age.Int(), int64(21))

	height, _ := v.Field("height")
	require.False(t, height.IsInt())
	require.Equal(t, height.Float(), 1.76)

	encoded, err := json.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, string(encoded), text)
}

func TestValueStringEscaping(t *testing.T) {
	require.Equal(t, String(`say "hi"`).String(), `"say \"hi\""`)
}

func TestValueYAMLRoundTrip(t *testing.T) {
	obj := Object()
	obj.SetField("name", String("Albert"))
	obj.SetField("age", Int(21))
	obj.SetField("height", Float(1.76))
	obj.SetField("tags", Array(String("foo"), String("bar")))

	encoded, err := yaml.Marshal(obj)
	require.NoError(t, err)

	var decoded Value
	require.NoError(t, yaml.Unmarshal(encoded, &decoded))
	require.Equal(t, decoded, obj)
}

func TestValueYAMLDecode(t *testing.T) {
	text := `
server:
  host: localhost
  port: 8080
  ratio: 0.5
  active: true
tags:
  - alpha
  - beta
`

	var v Value
	require.NoError(t, yaml.Unmarshal([]byte(text), &v))

	server, ok := v.Field("server")
	require.True(t, ok)

	port, _ := server.Field("port")
	require.True(t, port.IsInt())
	require.Equal(t, port.Int(), int64(8080))

	ratio, _ := server.Field("ratio")
	require.False(t, ratio.IsInt())
	require.Equal(t, ratio.Float(), 0.5)

	active, _ := server.Field("active")
	require.Equal(t, active.Bool(), true)

	tags, _ := v.Field("tags")
	require.Equal(t, tags.Len(), 2)
	require.Equal(t, tags.At(0).Str(), "alpha")
}
