package typemap

// JSON schema type names used in fragments.
const (
	jsArray   = "array"
	jsBoolean = "boolean"
	jsInteger = "integer"
	jsNumber  = "number"
	jsObject  = "object"
	jsString  = "string"
)

// Fragment is the dialect-neutral result of resolving one field.
//
// It takes one of three forms:
//   - primitive: Type is set, with optional Format and AdditionalProperties
//   - reference: only Ref is set
//   - array: Type is "array" and Items holds the unwrapped fragment
type Fragment struct {
	Type                 string
	Format               string
	AdditionalProperties bool
	Ref                  string
	Items                *Fragment
}

// IsRef reports whether the fragment is a reference.
func (f Fragment) IsRef() bool {
	return f.Ref != ""
}

// IsArray reports whether the fragment wraps an item fragment.
func (f Fragment) IsArray() bool {
	return f.Items != nil
}

func primitive(typ, format string) Fragment {
	return Fragment{Type: typ, Format: format}
}

func freeFormObject() Fragment {
	return Fragment{Type: jsObject, AdditionalProperties: true}
}
