package typemap

// wellKnownEntry holds the pre-built fragment of a well-known type for each dialect.
type wellKnownEntry struct {
	swagger2 Fragment
	openapi3 Fragment
}

// wellKnownTypes is built once at init and only read afterwards.
var wellKnownTypes = buildWellKnownTypes()

func buildWellKnownTypes() map[string]wellKnownEntry {
	same := func(f Fragment) wellKnownEntry {
		return wellKnownEntry{swagger2: f, openapi3: f}
	}

	return map[string]wellKnownEntry{
		"google.protobuf.Timestamp":   same(primitive(jsString, "date-time")),
		"google.protobuf.StringValue": same(primitive(jsString, "")),
		"google.protobuf.Int32Value":  same(primitive(jsInteger, "int32")),
		"google.protobuf.Int64Value":  same(primitive(jsInteger, "int64")),
		"google.protobuf.FloatValue":  same(primitive(jsNumber, "float")),
		"google.protobuf.DoubleValue": same(primitive(jsNumber, "double")),
		"google.protobuf.BoolValue": {
			swagger2: primitive(jsBoolean, ""),
			openapi3: primitive(jsBoolean, "boolean"),
		},
		"google.protobuf.Struct":    same(freeFormObject()),
		"google.protobuf.Value":     same(freeFormObject()),
		"google.protobuf.ListValue": same(freeFormObject()),
		"google.protobuf.Duration":  same(primitive(jsString, "")),
	}
}

// Lookup returns the predefined fragment of a well-known type in the given dialect.
func Lookup(typeName string, d Dialect) (Fragment, bool) {
	entry, ok := wellKnownTypes[typeName]
	if !ok {
		return Fragment{}, false
	}
	if d == Swagger2 {
		return entry.swagger2, true
	}
	return entry.openapi3, true
}

// IsWellKnown reports whether typeName has a registered fragment.
func IsWellKnown(typeName string) bool {
	_, ok := wellKnownTypes[typeName]
	return ok
}
