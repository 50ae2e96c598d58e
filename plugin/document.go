package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/reflect/protoreflect"
	"gopkg.in/yaml.v3"

	"github.com/alis-exchange/protoc-gen-openapi-schema/typemap"
)

const (
	swaggerVersion = "2.0"
	openAPIVersion = "3.0.3"
	draft202012    = "https://json-schema.org/draft/2020-12/schema"

	// targetTypeExtension carries the profile target of a definition.
	targetTypeExtension = "x-target-type"
)

// documentBuilder assembles the documents of a single proto file.
type documentBuilder struct {
	gr          *Generator
	file        *protogen.File
	basePackage string
}

// build renders the targets of the file in the given format.
func (b *documentBuilder) build(format Format, targets targetSet) ([]byte, error) {
	switch format {
	case FormatSwagger2:
		defs, err := b.definitions(typemap.Swagger2, targets)
		if err != nil {
			return nil, err
		}
		doc := orderedmap.New[string, any]()
		doc.Set("swagger", swaggerVersion)
		doc.Set("info", b.info())
		doc.Set("paths", orderedmap.New[string, any]())
		doc.Set("definitions", defs)
		return json.MarshalIndent(doc, "", "  ")

	case FormatOpenAPI3:
		defs, err := b.definitions(typemap.OpenAPI3, targets)
		if err != nil {
			return nil, err
		}
		components := orderedmap.New[string, any]()
		components.Set("schemas", defs)

		doc := orderedmap.New[string, any]()
		doc.Set("openapi", openAPIVersion)
		doc.Set("info", b.info())
		doc.Set("paths", orderedmap.New[string, any]())
		doc.Set("components", components)
		return yaml.Marshal(doc)

	case FormatJSONSchema:
		root, err := b.jsonSchemaDocument(targets)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(root, "", "  ")

	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// info returns the document info object.
func (b *documentBuilder) info() *typemap.SchemaMap {
	version := b.gr.Version
	if version == "" {
		version = "development"
	}
	info := orderedmap.New[string, any]()
	info.Set("title", b.file.Desc.Path())
	info.Set("version", version)
	return info
}

// -----------------------------------------------------------------------------
// Swagger 2.0 and OpenAPI 3 definitions
// -----------------------------------------------------------------------------

// definitions renders every target message and enum, keyed by definition name.
func (b *documentBuilder) definitions(d typemap.Dialect, targets targetSet) (*typemap.SchemaMap, error) {
	gc := typemap.NewContext(d, b.basePackage)

	defs := orderedmap.New[string, any]()
	for _, msg := range targets.messages {
		m, err := b.messageMap(msg, d, gc)
		if err != nil {
			return nil, err
		}
		defs.Set(b.definitionName(msg.Desc), m)
	}
	for _, e := range targets.enums {
		defs.Set(b.definitionName(e.Desc), b.enumMap(e))
	}
	return defs, nil
}

// messageMap renders a message as an object definition.
//
// Ignored fields are dropped and map fields are skipped with a warning. The
// first field the engine rejects aborts the message.
func (b *documentBuilder) messageMap(msg *protogen.Message, d typemap.Dialect, gc typemap.GenerationContext) (*typemap.SchemaMap, error) {
	m := orderedmap.New[string, any]()
	m.Set("type", "object")

	title, description := b.gr.getTitleAndDescription(msg.Desc)
	if title != "" {
		m.Set("title", title)
	}
	if description != "" {
		m.Set("description", description)
	}

	props := orderedmap.New[string, any]()
	var required []string
	for _, field := range msg.Fields {
		if !b.includeField(field) {
			continue
		}

		fm, err := b.fieldMap(field, d, gc)
		if err != nil {
			return nil, err
		}

		// Siblings of $ref are ignored by consumers, so refs stay bare.
		if _, isRef := fm.Get("$ref"); !isRef {
			fieldTitle, fieldDescription := b.gr.fieldTitleAndDescription(field)
			if fieldTitle != "" {
				fm.Set("title", fieldTitle)
			}
			if fieldDescription != "" {
				fm.Set("description", fieldDescription)
			}
		}

		props.Set(getFieldName(field), fm)
		if field.Desc.Cardinality() == protoreflect.Required {
			required = append(required, getFieldName(field))
		}
	}
	m.Set("properties", props)

	if len(required) > 0 {
		m.Set("required", required)
	}
	if target, ok := b.gr.opts.Profile.Target(string(msg.Desc.FullName())); ok {
		m.Set(targetTypeExtension, target)
	}

	return m, nil
}

// fieldMap maps one field through the engine in the given dialect.
func (b *documentBuilder) fieldMap(field *protogen.Field, d typemap.Dialect, gc typemap.GenerationContext) (*typemap.SchemaMap, error) {
	fd := fieldDescriptor(field)
	if d == typemap.Swagger2 {
		p, err := typemap.EmitProperty(fd, gc)
		if err != nil {
			return nil, err
		}
		return typemap.PropertyMap(p), nil
	}
	return typemap.EmitSchema(fd, gc)
}

// enumMap renders an enum as a string definition listing its value names.
func (b *documentBuilder) enumMap(e *protogen.Enum) *typemap.SchemaMap {
	m := orderedmap.New[string, any]()
	m.Set("type", "string")

	title, description := b.gr.getTitleAndDescription(e.Desc)
	if title != "" {
		m.Set("title", title)
	}
	if description != "" {
		m.Set("description", description)
	}
	m.Set("enum", enumValueNames(e))

	if target, ok := b.gr.opts.Profile.Target(string(e.Desc.FullName())); ok {
		m.Set(targetTypeExtension, target)
	}
	return m
}

// includeField reports whether a field appears in its message definition.
func (b *documentBuilder) includeField(field *protogen.Field) bool {
	if getFieldJsonSchemaOptions(field).GetIgnore() {
		return false
	}
	if field.Desc.IsMap() {
		b.gr.opts.Logger.Warn("skipping map field", "field", field.Desc.FullName())
		return false
	}
	return true
}

// -----------------------------------------------------------------------------
// JSON Schema (Draft 2020-12)
// -----------------------------------------------------------------------------

// jsonSchemaDocument renders the targets as a schema whose $defs hold every
// message and enum.
func (b *documentBuilder) jsonSchemaDocument(targets targetSet) (*jsonschema.Schema, error) {
	gc := typemap.GenerationContext{BasePackage: b.basePackage, RefPrefix: typemap.DefsPrefix}

	root := &jsonschema.Schema{
		Schema: draft202012,
		Title:  b.file.Desc.Path(),
		Defs:   make(map[string]*jsonschema.Schema),
	}

	for _, msg := range targets.messages {
		title, description := b.gr.getTitleAndDescription(msg.Desc)
		schema := &jsonschema.Schema{
			Type:        "object",
			Title:       title,
			Description: description,
			Properties:  make(map[string]*jsonschema.Schema),
		}

		for _, field := range msg.Fields {
			if !b.includeField(field) {
				continue
			}

			fs, err := typemap.EmitJSONSchema(fieldDescriptor(field), gc)
			if err != nil {
				return nil, err
			}
			if fs.Ref == "" {
				fs.Title, fs.Description = b.gr.fieldTitleAndDescription(field)
			}

			schema.Properties[getFieldName(field)] = fs
			schema.PropertyOrder = append(schema.PropertyOrder, getFieldName(field))
			if field.Desc.Cardinality() == protoreflect.Required {
				schema.Required = append(schema.Required, getFieldName(field))
			}
		}

		root.Defs[b.definitionName(msg.Desc)] = schema
	}

	for _, e := range targets.enums {
		title, description := b.gr.getTitleAndDescription(e.Desc)
		values := make([]any, 0, len(e.Values))
		for _, name := range enumValueNames(e) {
			values = append(values, name)
		}
		root.Defs[b.definitionName(e.Desc)] = &jsonschema.Schema{
			Type:        "string",
			Title:       title,
			Description: description,
			Enum:        values,
		}
	}

	return root, nil
}
