package typemap

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFieldType matches every *UnsupportedFieldTypeError through errors.Is.
var ErrUnsupportedFieldType = errors.New("unsupported field type")

// UnsupportedFieldTypeError is returned when a field is neither a well-known
// type, a scalar kind, nor a message, enum or group reference.
type UnsupportedFieldTypeError struct {
	Field   string
	Type    string
	Message string
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("field name: %s, type: %s in message: %s is unsupported", e.Field, e.Type, e.Message)
}

// Is makes errors.Is(err, ErrUnsupportedFieldType) succeed.
func (e *UnsupportedFieldTypeError) Is(target error) bool {
	return target == ErrUnsupportedFieldType
}

func unsupported(fd FieldDescriptor) error {
	typeName := fd.TypeName
	if typeName == "" {
		typeName = fd.WireType.String()
	}
	return &UnsupportedFieldTypeError{
		Field:   fd.Name,
		Type:    typeName,
		Message: fd.EnclosingMessage,
	}
}
