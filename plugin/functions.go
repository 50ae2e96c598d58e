// Package plugin provides the core functionality for the protoc-gen-openapi-schema plugin.
//
// This package turns Protocol Buffer message definitions into API description
// documents. Each field is mapped through the typemap engine, and the resulting
// fragments are assembled into one document per proto file and output format.
//
// # Architecture
//
// The plugin follows a two-phase approach:
//  1. Message Collection: Scans proto files to identify messages (and the enums they
//     reference) that should appear in the document, based on file-level and
//     message-level options.
//  2. Document Assembly: For each target message, every field is converted to a
//     typemap.FieldDescriptor and rendered in the requested dialect. The message
//     becomes an object definition keyed by its short or fully-qualified name.
//
// # Output Formats
//
//   - swagger2   → <file>.swagger.json, definitions under #/definitions/
//   - openapi3   → <file>.openapi.yaml, schemas under #/components/schemas/
//   - jsonschema → <file>.schema.json, Draft 2020-12 with #/$defs/
//
// # Google Types
//
// google.protobuf.* messages never become definitions. Registered well-known
// types are inlined by the engine; any other google.protobuf type is rejected
// and aborts generation for the file.
//
// # Options
//
// The open.alis.services JSON schema options are honoured at file, message and
// field level: generate, ignore, title and description.
package plugin

import (
	"strings"

	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	optionsPb "open.alis.services/protobuf/alis/open/options/v1"

	"github.com/alis-exchange/protoc-gen-openapi-schema/typemap"
)

// googleProtobufPackage holds the well-known types. Its messages are inlined
// or rejected by the engine, never emitted as definitions.
const googleProtobufPackage = "google.protobuf"

// -----------------------------------------------------------------------------
// Core Types
// -----------------------------------------------------------------------------

// Generator coordinates document generation for the proto files of one request.
//
// Generator is safe for concurrent use across files: all per-file state lives
// in the documentBuilder created by generateFile.
type Generator struct {
	// Version is the plugin version recorded in every document.
	Version string

	opts Options
}

// generatedDocument is one rendered output file.
type generatedDocument struct {
	filename string
	content  []byte
}

// targetSet is the collection result for a single proto file.
type targetSet struct {
	messages []*protogen.Message
	enums    []*protogen.Enum
}

// -----------------------------------------------------------------------------
// Generator Methods
// -----------------------------------------------------------------------------

// generateFile renders all requested documents for a single proto file.
//
// The generation process:
//  1. Checks file-level options to determine the default generation behavior
//  2. Collects target messages, their message dependencies and referenced enums
//  3. Maps every field through the typemap engine for each format
//  4. Serialises one document per format
//
// Returns no documents if the file holds no target messages or enums.
func (gr *Generator) generateFile(file *protogen.File) ([]generatedDocument, error) {
	// --- Determine Generation Scope ---
	// File options override the plugin-wide default.
	generateAll := gr.opts.GenerateAll
	if opts := getFileJsonSchemaOptions(file); opts != nil {
		generateAll = opts.GetGenerate()
	}

	targets := gr.collectTargets(file, generateAll)
	if len(targets.messages) == 0 && len(targets.enums) == 0 {
		gr.opts.Logger.Debug("nothing to generate", "file", file.Desc.Path())
		return nil, nil
	}

	basePackage := gr.opts.BasePackage
	if basePackage == "" {
		basePackage = string(file.Desc.Package())
	}

	b := &documentBuilder{
		gr:          gr,
		file:        file,
		basePackage: basePackage,
	}

	var docs []generatedDocument
	for _, format := range gr.opts.Formats {
		content, err := b.build(format, targets)
		if err != nil {
			return nil, err
		}
		docs = append(docs, generatedDocument{
			filename: file.GeneratedFilenamePrefix + fileSuffix(format),
			content:  content,
		})
	}

	gr.opts.Logger.Info("generated documents",
		"file", file.Desc.Path(),
		"messages", len(targets.messages),
		"enums", len(targets.enums),
		"formats", len(docs),
	)
	return docs, nil
}

// fileSuffix returns the output filename suffix for a format.
func fileSuffix(format Format) string {
	switch format {
	case FormatSwagger2:
		return ".swagger.json"
	case FormatJSONSchema:
		return ".schema.json"
	default:
		return ".openapi.yaml"
	}
}

// collectTargets gathers the messages and enums that become definitions in the
// document of file. Messages are those selected by getMessages; enums are the
// file's own top-level enums plus every enum referenced by a target message.
func (gr *Generator) collectTargets(file *protogen.File, generateAll bool) targetSet {
	var targets targetSet
	targets.messages = gr.getMessages(file.Messages, generateAll, make(map[string]bool))

	seen := make(map[protoreflect.FullName]bool)
	addEnum := func(e *protogen.Enum) {
		if e == nil || seen[e.Desc.FullName()] || isGoogleProtobuf(e.Desc) {
			return
		}
		seen[e.Desc.FullName()] = true
		targets.enums = append(targets.enums, e)
	}

	if generateAll {
		for _, e := range file.Enums {
			addEnum(e)
		}
	}
	for _, msg := range targets.messages {
		for _, e := range msg.Enums {
			addEnum(e)
		}
		for _, field := range msg.Fields {
			if field.Desc.Kind() == protoreflect.EnumKind && !getFieldJsonSchemaOptions(field).GetIgnore() {
				addEnum(field.Enum)
			}
		}
	}

	return targets
}

// getMessages recursively collects all messages that should become definitions.
//
// This method implements the message filtering and dependency resolution logic:
//   - Skips internal proto types (map entries)
//   - Skips google.protobuf messages, which the engine inlines or rejects
//   - Respects message-level options that can override the default generation flag
//   - Automatically includes message dependencies (fields that reference other messages)
//   - Recursively processes nested message definitions
//
// Returns a flat list of all target messages, in dependency order.
func (gr *Generator) getMessages(messages []*protogen.Message, defaultGenerate bool, visited map[string]bool) []*protogen.Message {
	return gr.getMessagesWithForce(messages, defaultGenerate, false, visited)
}

// getMessagesWithForce is the internal implementation that supports forcing generation.
// When force=true, explicit generate=false options are ignored to prevent broken $refs.
func (gr *Generator) getMessagesWithForce(messages []*protogen.Message, defaultGenerate bool, force bool, visited map[string]bool) []*protogen.Message {
	var results []*protogen.Message

	for _, message := range messages {
		// Map entries are synthetic; well-known types never get a definition.
		if message.Desc.IsMapEntry() || isGoogleProtobuf(message.Desc) {
			continue
		}

		shouldGen := defaultGenerate
		if opts := getMessageJsonSchemaOptions(message); opts != nil {
			if !force || opts.GetGenerate() {
				shouldGen = opts.GetGenerate()
			}
		}

		if !shouldGen {
			continue
		}

		messageName := string(message.Desc.FullName())
		if !visited[messageName] {
			visited[messageName] = true
			results = append(results, message)

			// Referenced messages must be defined, otherwise the $ref is broken.
			for _, field := range message.Fields {
				if field.Message == nil || field.Desc.IsMap() || getFieldJsonSchemaOptions(field).GetIgnore() {
					continue
				}
				results = append(results, gr.getMessagesWithForce([]*protogen.Message{field.Message}, true, true, visited)...)
			}
		}

		// Nested messages are forced so that "Parent.Child" refs resolve.
		if len(message.Messages) > 0 {
			results = append(results, gr.getMessagesWithForce(message.Messages, true, true, visited)...)
		}
	}

	return results
}

// -----------------------------------------------------------------------------
// Type Mapping Utilities
// -----------------------------------------------------------------------------

// isGoogleProtobuf reports whether a descriptor belongs to google.protobuf.
func isGoogleProtobuf(desc protoreflect.Descriptor) bool {
	return desc.ParentFile().Package() == googleProtobufPackage
}

// getFieldName returns the proto field name (snake_case) used as the property key.
func getFieldName(field *protogen.Field) string {
	return string(field.Desc.Name())
}

// fieldDescriptor converts a protogen field into the engine's descriptor.
//
// Scalars use their kind name as type name. Message, group and enum fields use
// the referenced type's full name, with the package taken from its file.
func fieldDescriptor(field *protogen.Field) typemap.FieldDescriptor {
	desc := field.Desc
	fd := typemap.FieldDescriptor{
		Name:             getFieldName(field),
		TypeName:         desc.Kind().String(),
		WireType:         desc.Kind(),
		Label:            desc.Cardinality(),
		EnclosingMessage: string(desc.ContainingMessage().FullName()),
	}

	var ref protoreflect.Descriptor
	switch desc.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		ref = desc.Message()
	case protoreflect.EnumKind:
		ref = desc.Enum()
	}
	if ref != nil {
		fd.TypeName = string(ref.FullName())
		fd.FQPN = fd.TypeName
		fd.Package = string(ref.ParentFile().Package())
	}

	return fd
}

// definitionName returns the document key of a message or enum.
func (b *documentBuilder) definitionName(desc protoreflect.Descriptor) string {
	return typemap.DefinitionName(string(desc.FullName()), string(desc.ParentFile().Package()), b.basePackage)
}

// getTitleAndDescription extracts title and description from proto comments.
//
// The parsing follows a convention where:
//   - If comments contain a blank line (paragraph break), the first paragraph becomes
//     the title and the rest becomes the description
//   - If no blank line exists, the entire comment becomes the description (no title)
func (gr *Generator) getTitleAndDescription(desc protoreflect.Descriptor) (title string, description string) {
	src := desc.ParentFile().SourceLocations().ByDescriptor(desc)

	if src.LeadingComments != "" {
		comments := strings.TrimSpace(src.LeadingComments)

		// Try to split on Unix-style blank line first, then Windows-style.
		parts := strings.SplitN(comments, "\n\n", 2)
		if len(parts) < 2 {
			parts = strings.SplitN(comments, "\r\n\r\n", 2)
		}

		if len(parts) == 2 {
			title = strings.TrimSpace(parts[0])
			description = strings.TrimSpace(parts[1])
		} else {
			description = comments
		}
	}

	return title, description
}

// fieldTitleAndDescription applies field option overrides to the comment metadata.
func (gr *Generator) fieldTitleAndDescription(field *protogen.Field) (string, string) {
	title, description := gr.getTitleAndDescription(field.Desc)
	opts := getFieldJsonSchemaOptions(field)
	if opts.GetTitle() != "" {
		title = opts.GetTitle()
	}
	if opts.GetDescription() != "" {
		description = opts.GetDescription()
	}
	return title, description
}

// enumValueNames returns the enum value names, which is how the proto3 JSON
// mapping serialises enums.
func enumValueNames(e *protogen.Enum) []string {
	names := make([]string, 0, len(e.Values))
	for _, v := range e.Values {
		names = append(names, string(v.Desc.Name()))
	}
	return names
}

// -----------------------------------------------------------------------------
// Proto Options Extraction Helpers
// -----------------------------------------------------------------------------

// getFileJsonSchemaOptions extracts JSON Schema options from a proto file.
// Returns nil if no JSON Schema options are set on the file.
func getFileJsonSchemaOptions(file *protogen.File) *optionsPb.FileOptions_JsonSchema {
	opts := file.Desc.Options()
	if !proto.HasExtension(opts, optionsPb.E_File) {
		return nil
	}
	fileOpts := proto.GetExtension(opts, optionsPb.E_File).(*optionsPb.FileOptions)
	return fileOpts.GetJsonSchema()
}

// getMessageJsonSchemaOptions extracts JSON Schema options from a proto message.
// Returns nil if no JSON Schema options are set on the message.
func getMessageJsonSchemaOptions(message *protogen.Message) *optionsPb.MessageOptions_JsonSchema {
	opts := message.Desc.Options()
	if !proto.HasExtension(opts, optionsPb.E_Message) {
		return nil
	}
	msgOpts := proto.GetExtension(opts, optionsPb.E_Message).(*optionsPb.MessageOptions)
	return msgOpts.GetJsonSchema()
}

// getFieldJsonSchemaOptions extracts JSON Schema options from a proto field.
//
// Returns nil if no JSON Schema options are set on the field.
// Note: Callers should handle nil gracefully; the proto getter methods
// return zero values when called on nil receivers.
func getFieldJsonSchemaOptions(field *protogen.Field) *optionsPb.FieldOptions_JsonSchema {
	opts := field.Desc.Options()
	if !proto.HasExtension(opts, optionsPb.E_Field) {
		return nil
	}
	fieldOpts := proto.GetExtension(opts, optionsPb.E_Field).(*optionsPb.FieldOptions)
	return fieldOpts.GetJsonSchema()
}

