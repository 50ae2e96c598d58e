package typemap

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Property is a Swagger 2.0 property. The set of implementations is closed:
// IntegerProperty, LongProperty, FloatProperty, DoubleProperty, BooleanProperty,
// StringProperty, ByteArrayProperty, DateTimeProperty, ObjectProperty,
// RefProperty and ArrayProperty.
type Property interface {
	// Type is the Swagger type keyword. Empty for RefProperty.
	Type() string
	// Format is the Swagger format keyword, possibly empty.
	Format() string

	json.Marshaler
	isProperty()
}

type (
	IntegerProperty   struct{}
	LongProperty      struct{}
	FloatProperty     struct{}
	DoubleProperty    struct{}
	BooleanProperty   struct{}
	ByteArrayProperty struct{}
	DateTimeProperty  struct{}

	// StringProperty is a plain string, optionally carrying a format such as "uint64".
	StringProperty struct {
		StringFormat string
	}

	// ObjectProperty is a free-form object accepting any properties.
	ObjectProperty struct{}

	// RefProperty points at a definition and carries nothing else.
	RefProperty struct {
		Ref string
	}

	// ArrayProperty holds the property of its elements.
	ArrayProperty struct {
		Items Property
	}
)

func (IntegerProperty) Type() string   { return jsInteger }
func (LongProperty) Type() string      { return jsInteger }
func (FloatProperty) Type() string     { return jsNumber }
func (DoubleProperty) Type() string    { return jsNumber }
func (BooleanProperty) Type() string   { return jsBoolean }
func (ByteArrayProperty) Type() string { return jsString }
func (DateTimeProperty) Type() string  { return jsString }
func (StringProperty) Type() string    { return jsString }
func (ObjectProperty) Type() string    { return jsObject }
func (RefProperty) Type() string       { return "" }
func (ArrayProperty) Type() string     { return jsArray }

func (IntegerProperty) Format() string   { return "int32" }
func (LongProperty) Format() string      { return "int64" }
func (FloatProperty) Format() string     { return "float" }
func (DoubleProperty) Format() string    { return "double" }
func (BooleanProperty) Format() string   { return "" }
func (ByteArrayProperty) Format() string { return "byte" }
func (DateTimeProperty) Format() string  { return "date-time" }
func (p StringProperty) Format() string  { return p.StringFormat }
func (ObjectProperty) Format() string    { return "" }
func (RefProperty) Format() string       { return "" }
func (ArrayProperty) Format() string     { return "" }

func (IntegerProperty) isProperty()   {}
func (LongProperty) isProperty()      {}
func (FloatProperty) isProperty()     {}
func (DoubleProperty) isProperty()    {}
func (BooleanProperty) isProperty()   {}
func (ByteArrayProperty) isProperty() {}
func (DateTimeProperty) isProperty()  {}
func (StringProperty) isProperty()    {}
func (ObjectProperty) isProperty()    {}
func (RefProperty) isProperty()       {}
func (ArrayProperty) isProperty()     {}

func (p IntegerProperty) MarshalJSON() ([]byte, error)   { return marshalProperty(p) }
func (p LongProperty) MarshalJSON() ([]byte, error)      { return marshalProperty(p) }
func (p FloatProperty) MarshalJSON() ([]byte, error)     { return marshalProperty(p) }
func (p DoubleProperty) MarshalJSON() ([]byte, error)    { return marshalProperty(p) }
func (p BooleanProperty) MarshalJSON() ([]byte, error)   { return marshalProperty(p) }
func (p ByteArrayProperty) MarshalJSON() ([]byte, error) { return marshalProperty(p) }
func (p DateTimeProperty) MarshalJSON() ([]byte, error)  { return marshalProperty(p) }
func (p StringProperty) MarshalJSON() ([]byte, error)    { return marshalProperty(p) }
func (p ObjectProperty) MarshalJSON() ([]byte, error)    { return marshalProperty(p) }
func (p RefProperty) MarshalJSON() ([]byte, error)       { return marshalProperty(p) }
func (p ArrayProperty) MarshalJSON() ([]byte, error)     { return marshalProperty(p) }

func marshalProperty(p Property) ([]byte, error) {
	return json.Marshal(PropertyMap(p))
}

// PropertyMap renders a property with the same keys and ordering as the
// OpenAPI3 emitter, so both dialects serialise identically apart from refs.
func PropertyMap(p Property) *orderedmap.OrderedMap[string, any] {
	m := orderedmap.New[string, any]()

	switch v := p.(type) {
	case RefProperty:
		m.Set("$ref", v.Ref)
		return m

	case ArrayProperty:
		m.Set("type", jsArray)
		m.Set("items", PropertyMap(v.Items))
		return m
	}

	m.Set("type", p.Type())
	if format := p.Format(); format != "" {
		m.Set("format", format)
	}
	if _, ok := p.(ObjectProperty); ok {
		m.Set("additionalProperties", true)
	}
	return m
}

// propertyFor converts a resolved fragment into its Swagger 2.0 variant.
func propertyFor(f Fragment) (Property, error) {
	if f.IsRef() {
		return RefProperty{Ref: f.Ref}, nil
	}
	if f.IsArray() {
		items, err := propertyFor(*f.Items)
		if err != nil {
			return nil, err
		}
		return ArrayProperty{Items: items}, nil
	}

	switch f.Type {
	case jsInteger:
		if f.Format == "int32" {
			return IntegerProperty{}, nil
		}
		return LongProperty{}, nil

	case jsNumber:
		if f.Format == "float" {
			return FloatProperty{}, nil
		}
		return DoubleProperty{}, nil

	case jsBoolean:
		return BooleanProperty{}, nil

	case jsString:
		switch f.Format {
		case "byte":
			return ByteArrayProperty{}, nil
		case "date-time":
			return DateTimeProperty{}, nil
		default:
			return StringProperty{StringFormat: f.Format}, nil
		}

	case jsObject:
		return ObjectProperty{}, nil
	}

	return nil, fmt.Errorf("no property variant for type %q format %q", f.Type, f.Format)
}

// EmitProperty maps a field to a Swagger 2.0 property.
// An empty gc.RefPrefix defaults to "definitions".
func EmitProperty(fd FieldDescriptor, gc GenerationContext) (Property, error) {
	frag, err := Resolve(fd, gc, Swagger2)
	if err != nil {
		return nil, err
	}
	return propertyFor(frag)
}
