package typemap

import (
	"github.com/google/jsonschema-go/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SchemaMap is the generic schema shape of the OpenAPI3 dialect.
type SchemaMap = orderedmap.OrderedMap[string, any]

// FragmentMap renders a fragment as an ordered schema map.
//
// Keys appear in the order type, format, additionalProperties, $ref, items.
// A $ref map carries no other key.
func FragmentMap(f Fragment) *SchemaMap {
	m := orderedmap.New[string, any]()

	if f.IsRef() {
		m.Set("$ref", f.Ref)
		return m
	}

	m.Set("type", f.Type)
	if f.Format != "" {
		m.Set("format", f.Format)
	}
	if f.AdditionalProperties {
		m.Set("additionalProperties", true)
	}
	if f.IsArray() {
		m.Set("items", FragmentMap(*f.Items))
	}
	return m
}

// EmitSchema maps a field to an OpenAPI 3 schema map.
// An empty gc.RefPrefix defaults to "components/schemas".
func EmitSchema(fd FieldDescriptor, gc GenerationContext) (*SchemaMap, error) {
	frag, err := Resolve(fd, gc, OpenAPI3)
	if err != nil {
		return nil, err
	}
	return FragmentMap(frag), nil
}

// JSONSchema renders a fragment as a jsonschema-go schema.
func JSONSchema(f Fragment) *jsonschema.Schema {
	if f.IsRef() {
		return &jsonschema.Schema{Ref: f.Ref}
	}

	s := &jsonschema.Schema{
		Type:   f.Type,
		Format: f.Format,
	}
	if f.AdditionalProperties {
		// The empty schema accepts any value.
		s.AdditionalProperties = &jsonschema.Schema{}
	}
	if f.IsArray() {
		s.Items = JSONSchema(*f.Items)
	}
	return s
}

// EmitJSONSchema maps a field to a Draft 2020-12 schema using the OpenAPI3
// decisions. An empty gc.RefPrefix defaults to "$defs".
func EmitJSONSchema(fd FieldDescriptor, gc GenerationContext) (*jsonschema.Schema, error) {
	if gc.RefPrefix == "" {
		gc.RefPrefix = DefsPrefix
	}
	frag, err := Resolve(fd, gc, OpenAPI3)
	if err != nil {
		return nil, err
	}
	return JSONSchema(frag), nil
}
