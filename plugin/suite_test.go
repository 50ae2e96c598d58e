package plugin

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/suite"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"google.golang.org/protobuf/types/pluginpb"
)

// Proto files of the test fixture.
const (
	commonProto = "acme/v1/common.proto"
	userProto   = "acme/v1/user.proto"
	teamProto   = "other/v1/team.proto"
	brokenProto = "acme/v1/broken.proto"
	legacyProto = "legacy/v2/record.proto"
)

// PluginTestSuite is the base test suite that provides common setup for all
// plugin tests. It handles:
// - Building a FileDescriptorSet for the fixture protos in memory
// - Creating protogen.Plugin instances
// - Finding target files, messages and fields
type PluginTestSuite struct {
	suite.Suite

	// fds holds the fixture files and the well-known types they import.
	fds *descriptorpb.FileDescriptorSet

	// plugin is a fresh protogen.Plugin instance created for each test.
	plugin *protogen.Plugin

	// file is the target proto file within the plugin.
	file *protogen.File

	// generator is a Generator instance for tests that need it.
	generator *Generator
}

// SetupSuite runs once before all tests in the suite.
func (s *PluginTestSuite) SetupSuite() {
	s.fds = fixtureDescriptorSet()
}

// SetupTest runs before each individual test.
// It creates a fresh plugin instance for user.proto and common.proto.
func (s *PluginTestSuite) SetupTest() {
	s.plugin = s.NewPlugin(commonProto, userProto)
	s.file = s.findFile(userProto)
	s.generator = &Generator{Version: "test", opts: s.DefaultOptions()}
}

// DefaultOptions returns options generating every format with a silent logger.
func (s *PluginTestSuite) DefaultOptions() Options {
	return Options{
		Formats:     []Format{FormatSwagger2, FormatOpenAPI3, FormatJSONSchema},
		GenerateAll: true,
		Logger:      log.New(io.Discard),
		Version:     "test",
	}
}

// NewPlugin creates a protogen.Plugin generating the given files.
func (s *PluginTestSuite) NewPlugin(filesToGenerate ...string) *protogen.Plugin {
	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: filesToGenerate,
		ProtoFile:      s.fds.File,
	}

	plugin, err := protogen.Options{}.New(req)
	s.Require().NoError(err, "Failed to create protogen.Plugin")
	return plugin
}

// RunGenerate runs Generate with opts and returns the generated files by name.
func (s *PluginTestSuite) RunGenerate(plugin *protogen.Plugin, opts Options) map[string]string {
	err := Generate(plugin, opts)
	s.Require().NoError(err, "Generate failed")

	resp := plugin.Response()
	s.Require().Empty(resp.GetError(), "Generate response error: %s", resp.GetError())

	result := make(map[string]string)
	for _, file := range resp.File {
		result[file.GetName()] = file.GetContent()
	}
	return result
}

// findFile finds a file in the plugin by path suffix.
func (s *PluginTestSuite) findFile(pathSuffix string) *protogen.File {
	for _, f := range s.plugin.Files {
		if strings.HasSuffix(f.Desc.Path(), pathSuffix) {
			return f
		}
	}
	s.T().Fatalf("Could not find file with suffix %q", pathSuffix)
	return nil
}

// FindMessage finds a message in the current file by name.
func (s *PluginTestSuite) FindMessage(name string) *protogen.Message {
	for _, msg := range s.file.Messages {
		if string(msg.Desc.Name()) == name {
			return msg
		}
	}
	s.T().Fatalf("Could not find message %q in file %q", name, s.file.Desc.Path())
	return nil
}

// FindField finds a field in a message by name.
func (s *PluginTestSuite) FindField(msg *protogen.Message, name string) *protogen.Field {
	for _, field := range msg.Fields {
		if string(field.Desc.Name()) == name {
			return field
		}
	}
	s.T().Fatalf("Could not find field %q in message %q", name, msg.Desc.Name())
	return nil
}

// NewDocumentBuilder returns a builder for the current file.
func (s *PluginTestSuite) NewDocumentBuilder(basePackage string) *documentBuilder {
	return &documentBuilder{gr: s.generator, file: s.file, basePackage: basePackage}
}

// -----------------------------------------------------------------------------
// Fixture descriptors
// -----------------------------------------------------------------------------

func fixtureDescriptorSet() *descriptorpb.FileDescriptorSet {
	return &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{
			protodesc.ToFileDescriptorProto(timestamppb.File_google_protobuf_timestamp_proto),
			protodesc.ToFileDescriptorProto(structpb.File_google_protobuf_struct_proto),
			protodesc.ToFileDescriptorProto(wrapperspb.File_google_protobuf_wrappers_proto),
			protodesc.ToFileDescriptorProto(anypb.File_google_protobuf_any_proto),
			teamFile(),
			commonFile(),
			userFile(),
			brokenFile(),
			legacyFile(),
		},
	}
}

func protoField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, label descriptorpb.FieldDescriptorProto_Label, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Type:   typ.Enum(),
		Label:  label.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String(typeName)
	}
	return f
}

func optional(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	return protoField(name, number, typ, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, typeName)
}

func repeated(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	return protoField(name, number, typ, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, typeName)
}

func protoFile(name, pkg, goPackage, syntax string, deps ...string) *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(name),
		Package:    proto.String(pkg),
		Syntax:     proto.String(syntax),
		Dependency: deps,
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String(goPackage),
		},
	}
}

const (
	typeString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	typeUint64  = descriptorpb.FieldDescriptorProto_TYPE_UINT64
	typeInt64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
	typeInt32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
	typeBytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	typeMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	typeEnum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM
)

func teamFile() *descriptorpb.FileDescriptorProto {
	f := protoFile(teamProto, "other.v1", "example.com/other/v1;otherv1", "proto3")
	f.MessageType = []*descriptorpb.DescriptorProto{
		{
			Name:  proto.String("Team"),
			Field: []*descriptorpb.FieldDescriptorProto{optional("name", 1, typeString, "")},
		},
	}
	return f
}

func commonFile() *descriptorpb.FileDescriptorProto {
	f := protoFile(commonProto, "acme.v1", "example.com/acme/v1;acmev1", "proto3")
	f.MessageType = []*descriptorpb.DescriptorProto{
		{
			Name: proto.String("Address"),
			Field: []*descriptorpb.FieldDescriptorProto{
				optional("street", 1, typeString, ""),
				optional("city", 2, typeString, ""),
			},
		},
	}
	f.EnumType = []*descriptorpb.EnumDescriptorProto{
		{
			Name: proto.String("Status"),
			Value: []*descriptorpb.EnumValueDescriptorProto{
				{Name: proto.String("STATUS_UNSPECIFIED"), Number: proto.Int32(0)},
				{Name: proto.String("STATUS_ACTIVE"), Number: proto.Int32(1)},
				{Name: proto.String("STATUS_SUSPENDED"), Number: proto.Int32(2)},
			},
		},
	}
	return f
}

func userFile() *descriptorpb.FileDescriptorProto {
	f := protoFile(userProto, "acme.v1", "example.com/acme/v1;acmev1", "proto3",
		commonProto,
		teamProto,
		"google/protobuf/timestamp.proto",
		"google/protobuf/struct.proto",
		"google/protobuf/wrappers.proto",
	)
	f.MessageType = []*descriptorpb.DescriptorProto{
		{
			Name: proto.String("User"),
			Field: []*descriptorpb.FieldDescriptorProto{
				optional("id", 1, typeString, ""),
				optional("account", 2, typeUint64, ""),
				repeated("tags", 3, typeString, ""),
				optional("address", 4, typeMessage, ".acme.v1.Address"),
				optional("status", 5, typeEnum, ".acme.v1.Status"),
				optional("created_at", 6, typeMessage, ".google.protobuf.Timestamp"),
				optional("metadata", 7, typeMessage, ".google.protobuf.Struct"),
				optional("history", 8, typeMessage, ".google.protobuf.ListValue"),
				repeated("previous", 9, typeMessage, ".acme.v1.Address"),
				repeated("labels", 10, typeMessage, ".acme.v1.User.LabelsEntry"),
				optional("profile", 11, typeMessage, ".acme.v1.User.Profile"),
				optional("verified", 12, typeMessage, ".google.protobuf.BoolValue"),
				optional("team", 13, typeMessage, ".other.v1.Team"),
			},
			NestedType: []*descriptorpb.DescriptorProto{
				{
					Name: proto.String("Profile"),
					Field: []*descriptorpb.FieldDescriptorProto{
						optional("bio", 1, typeString, ""),
						optional("avatar", 2, typeBytes, ""),
					},
				},
				{
					Name: proto.String("LabelsEntry"),
					Field: []*descriptorpb.FieldDescriptorProto{
						optional("key", 1, typeString, ""),
						optional("value", 2, typeString, ""),
					},
					Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
				},
			},
		},
	}
	f.SourceCodeInfo = &descriptorpb.SourceCodeInfo{
		Location: []*descriptorpb.SourceCodeInfo_Location{
			{
				// message User
				Path:            []int32{4, 0},
				Span:            []int32{10, 0, 40, 1},
				LeadingComments: proto.String(" User Account\n\n A registered user of the platform.\n"),
			},
			{
				// User.id
				Path:            []int32{4, 0, 2, 0},
				Span:            []int32{12, 2, 16},
				LeadingComments: proto.String(" Unique identifier.\n"),
			},
		},
	}
	return f
}

func brokenFile() *descriptorpb.FileDescriptorProto {
	f := protoFile(brokenProto, "acme.v1", "example.com/acme/v1;acmev1", "proto3", "google/protobuf/any.proto")
	f.MessageType = []*descriptorpb.DescriptorProto{
		{
			Name: proto.String("Envelope"),
			Field: []*descriptorpb.FieldDescriptorProto{
				optional("payload", 1, typeMessage, ".google.protobuf.Any"),
			},
		},
	}
	return f
}

func legacyFile() *descriptorpb.FileDescriptorProto {
	f := protoFile(legacyProto, "legacy.v2", "example.com/legacy/v2;legacyv2", "proto2")
	f.MessageType = []*descriptorpb.DescriptorProto{
		{
			Name: proto.String("Record"),
			Field: []*descriptorpb.FieldDescriptorProto{
				protoField("id", 1, typeInt64, descriptorpb.FieldDescriptorProto_LABEL_REQUIRED, ""),
				optional("note", 2, typeString, ""),
				optional("size", 3, typeInt32, ""),
			},
		},
	}
	return f
}
