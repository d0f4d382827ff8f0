package fieldpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaScalars(t *testing.T) {
	type Struct struct {
		Name   string  `json:"name"`
		Age    int     `json:"age"`
		Height float64 `json:"height"`
		Active bool    `json:"active"`
	}

	require.Equal(t, SchemaOf[Struct]().String(),
		`{"type":"object","properties":{`+
			`"name":{"type":"string"},`+
			`"age":{"type":"integer"},`+
			`"height":{"type":"number"},`+
			`"active":{"type":"boolean"}}}`)
}

func TestSchemaNested(t *testing.T) {
	require.Equal(t, SchemaOf[testPerson]().String(),
		`{"type":"object","properties":{`+
			`"name":{"type":"string"},`+
			`"age":{"type":"integer"},`+
			`"address":{"type":"object","properties":{`+
			`"street":{"type":"string"},`+
			`"city":{"type":"string"},`+
			`"zip":{"type":"string"}}},`+
			`"active":{"type":"boolean"}}}`)
}

func TestSchemaArray(t *testing.T) {
	type Struct struct {
		Tags []string `json:"tags"`
	}

	require.Equal(t, SchemaOf[Struct]().String(),
		`{"type":"object","properties":{"tags":{"type":"array","items":{"type":"string"}}}}`)
}

func TestSchemaConverterTypesAreStrings(t *testing.T) {
	// registered types serialize as text, the schema reflects that
	require.Equal(t, SchemaOf[testTask]().String(),
		`{"type":"object","properties":{`+
			`"title":{"type":"string"},`+
			`"priority":{"type":"string"},`+
			`"timeout":{"type":"string"}}}`)
}

func TestSchemaPointerUnwraps(t *testing.T) {
	type Struct struct {
		Address *testAddress `json:"address"`
	}

	schema := SchemaOf[Struct]()

	properties, _ := schema.Field("properties")
	address, ok := properties.Field("address")
	require.True(t, ok)

	kind, _ := address.Field("type")
	require.Equal(t, kind.Str(), "object")
}

func TestSchemaRecursiveType(t *testing.T) {
	type Node struct {
		Name string `json:"name"`
		Next *Node  `json:"next"`
	}

	schema := SchemaOf[Node]()

	properties, _ := schema.Field("properties")
	next, ok := properties.Field("next")
	require.True(t, ok)

	// the nested occurrence breaks the cycle with a description
	_, ok = next.Field("description")
	require.True(t, ok)
}
