// Package typemap maps protobuf field descriptors onto OpenAPI schema fragments.
//
// A single field is resolved in a fixed order:
//  1. Well-known types (google.protobuf.Timestamp, wrappers, Struct, ...) are
//     looked up in a frozen per-dialect table.
//  2. Otherwise scalar kinds map to a (type, format) pair, and message, enum and
//     group kinds map to a $ref whose form depends on the base package.
//  3. Repeated fields (and google.protobuf.ListValue) are wrapped in an array
//     exactly once.
//  4. The resulting Fragment is emitted in the requested dialect.
//
// # Dialects
//
// Two output shapes are supported:
//   - Swagger2: a closed set of Property variants, refs under #/definitions/.
//   - OpenAPI3: an ordered string-keyed map, refs under #/components/schemas/.
//
// A third rendering, EmitJSONSchema, reuses the OpenAPI3 decisions to build a
// github.com/google/jsonschema-go schema with refs under #/$defs/.
//
// The package holds no mutable state. All functions are safe for concurrent use.
package typemap

import (
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Reference prefixes for each output dialect.
const (
	DefinitionsPrefix = "definitions"
	ComponentsPrefix  = "components/schemas"
	DefsPrefix        = "$defs"
)

// wellKnownNamespace is the package prefix shared by protobuf well-known types.
// Names under it that are not registered are never treated as plain references.
const wellKnownNamespace = "google.protobuf"

// listValueTypeName is always rendered as an array, regardless of its label.
const listValueTypeName = "google.protobuf.ListValue"

// Dialect selects the output shape of an emitter.
type Dialect int

const (
	// Swagger2 is the legacy Swagger 2.0 polymorphic property model.
	Swagger2 Dialect = iota + 1
	// OpenAPI3 is the OpenAPI 3 generic schema map model.
	OpenAPI3
)

// String returns the dialect name as used in plugin parameters.
func (d Dialect) String() string {
	switch d {
	case Swagger2:
		return "swagger2"
	case OpenAPI3:
		return "openapi3"
	default:
		return "unknown"
	}
}

// RefPrefix returns the default reference prefix of the dialect.
func (d Dialect) RefPrefix() string {
	if d == Swagger2 {
		return DefinitionsPrefix
	}
	return ComponentsPrefix
}

// FieldDescriptor is the engine's view of one protobuf field.
type FieldDescriptor struct {
	// Name is the field identifier, used for diagnostics.
	Name string

	// TypeName is the canonical type name: a full message or enum name such as
	// "pkg.Foo" or "google.protobuf.Timestamp", or the scalar kind name.
	TypeName string

	// FQPN is the fully-qualified name of the referenced type. Empty for scalars.
	FQPN string

	// Package is the proto package of the referenced type. When empty it is
	// derived from FQPN.
	Package string

	// WireType is the field kind.
	WireType protoreflect.Kind

	// Label is optional, required or repeated.
	Label protoreflect.Cardinality

	// EnclosingMessage names the message declaring the field, for diagnostics.
	EnclosingMessage string
}

// QualifiedName returns the referenced type's full name: FQPN, or TypeName
// when FQPN is empty.
func (fd FieldDescriptor) QualifiedName() string {
	if fd.FQPN != "" {
		return fd.FQPN
	}
	return fd.TypeName
}

// TypePackage returns the package of the referenced type.
// Without an explicit Package, everything before the last dot of the
// qualified name is used.
func (fd FieldDescriptor) TypePackage() string {
	if fd.Package != "" {
		return fd.Package
	}
	name := fd.QualifiedName()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[:idx]
	}
	return ""
}

// LocalName returns the referenced type name relative to its package.
func (fd FieldDescriptor) LocalName() string {
	name := fd.QualifiedName()
	pkg := fd.TypePackage()
	if pkg == "" {
		return name
	}
	return strings.TrimPrefix(name, pkg+".")
}

// GenerationContext carries the per-document settings of a mapping call.
type GenerationContext struct {
	// BasePackage decides between short and fully-qualified references.
	BasePackage string

	// RefPrefix is the path segment between "#/" and the type name.
	RefPrefix string
}

// NewContext returns a context using the dialect's default reference prefix.
func NewContext(d Dialect, basePackage string) GenerationContext {
	return GenerationContext{BasePackage: basePackage, RefPrefix: d.RefPrefix()}
}

// withDefaultPrefix fills an empty RefPrefix from the dialect.
func (gc GenerationContext) withDefaultPrefix(d Dialect) GenerationContext {
	if gc.RefPrefix == "" {
		gc.RefPrefix = d.RefPrefix()
	}
	return gc
}
