package typemap

import (
	"github.com/stretchr/testify/suite"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// TypeMapTestSuite is the base suite shared by the typemap tests. It provides
// descriptor builders for scalar, message and well-known fields.
type TypeMapTestSuite struct {
	suite.Suite
}

// Scalar returns a descriptor for a scalar field of the given kind.
func (s *TypeMapTestSuite) Scalar(name string, kind protoreflect.Kind, label protoreflect.Cardinality) FieldDescriptor {
	return FieldDescriptor{
		Name:             name,
		TypeName:         kind.String(),
		WireType:         kind,
		Label:            label,
		EnclosingMessage: "pkg.Holder",
	}
}

// Message returns a descriptor for a field referencing fullName in pkg.
func (s *TypeMapTestSuite) Message(name, fullName, pkg string, label protoreflect.Cardinality) FieldDescriptor {
	return FieldDescriptor{
		Name:             name,
		TypeName:         fullName,
		FQPN:             fullName,
		Package:          pkg,
		WireType:         protoreflect.MessageKind,
		Label:            label,
		EnclosingMessage: "pkg.Holder",
	}
}

// WellKnown returns a descriptor for a field of a google.protobuf message type.
func (s *TypeMapTestSuite) WellKnown(name, fullName string, label protoreflect.Cardinality) FieldDescriptor {
	return s.Message(name, fullName, "google.protobuf", label)
}

// keysOf returns the keys of an ordered map, oldest first.
func keysOf(m *SchemaMap) []string {
	var keys []string
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
