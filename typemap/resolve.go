package typemap

import (
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// primitiveFor maps a scalar kind to its fragment.
// It reports false for enum, message and group kinds, and for unknown kinds.
func primitiveFor(kind protoreflect.Kind) (Fragment, bool) {
	switch kind {
	case protoreflect.BytesKind:
		return primitive(jsString, "byte"), true

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return primitive(jsInteger, "int32"), true

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return primitive(jsInteger, "int64"), true

	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		// Unsigned 64-bit values do not fit a JSON number safely.
		return primitive(jsString, "uint64"), true

	case protoreflect.FloatKind:
		return primitive(jsNumber, "float"), true

	case protoreflect.DoubleKind:
		return primitive(jsNumber, "double"), true

	case protoreflect.BoolKind:
		return primitive(jsBoolean, "boolean"), true

	case protoreflect.StringKind:
		return primitive(jsString, ""), true

	default:
		return Fragment{}, false
	}
}

// isReferenceKind reports whether the kind is rendered as a $ref.
func isReferenceKind(kind protoreflect.Kind) bool {
	switch kind {
	case protoreflect.EnumKind, protoreflect.MessageKind, protoreflect.GroupKind:
		return true
	default:
		return false
	}
}

// ResolveRef returns the $ref path of a message, enum or group field.
// Types in the base package use their local name, all others their qualified name.
func ResolveRef(fd FieldDescriptor, gc GenerationContext) string {
	name := fd.QualifiedName()
	if fd.TypePackage() == gc.BasePackage {
		name = fd.LocalName()
	}
	return "#/" + gc.RefPrefix + "/" + name
}

// DefinitionName returns the key a type is stored under in a document built
// for basePackage. It mirrors ResolveRef so that refs and keys always agree.
func DefinitionName(fullName, pkg, basePackage string) string {
	if pkg == basePackage && pkg != "" {
		return strings.TrimPrefix(fullName, pkg+".")
	}
	return fullName
}

// shouldWrap reports whether the field is rendered as an array.
func shouldWrap(fd FieldDescriptor) bool {
	return fd.Label == protoreflect.Repeated || fd.TypeName == listValueTypeName
}

// wrap places f inside an array fragment.
func wrap(f Fragment) Fragment {
	items := f
	return Fragment{Type: jsArray, Items: &items}
}

// Resolve computes the dialect-neutral fragment of a field.
//
// The dialect only selects the well-known table; reference resolution and
// wrapping are identical for every dialect.
func Resolve(fd FieldDescriptor, gc GenerationContext, d Dialect) (Fragment, error) {
	gc = gc.withDefaultPrefix(d)

	frag, ok := Lookup(fd.TypeName, d)
	if !ok {
		if strings.HasPrefix(fd.TypeName, wellKnownNamespace) {
			return Fragment{}, unsupported(fd)
		}

		if frag, ok = primitiveFor(fd.WireType); !ok {
			// A reference needs a name to point at.
			if !isReferenceKind(fd.WireType) || fd.QualifiedName() == "" {
				return Fragment{}, unsupported(fd)
			}
			frag = Fragment{Ref: ResolveRef(fd, gc)}
		}
	}

	if shouldWrap(fd) {
		frag = wrap(frag)
	}
	return frag, nil
}
