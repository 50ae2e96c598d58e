//go:build plugintest

package plugintest

import (
	"flag"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/alis-exchange/protoc-gen-openapi-schema/plugin"
)

// loadDescriptorSet loads a FileDescriptorSet from a .pb file.
func loadDescriptorSet(t *testing.T, path string) *descriptorpb.FileDescriptorSet {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read descriptor set file %s: %v", path, err)
	}

	var fds descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &fds); err != nil {
		t.Fatalf("Failed to unmarshal descriptor set from %s: %v", path, err)
	}

	return &fds
}

// writeProtos writes the given sources into a fresh directory and returns it.
func writeProtos(t *testing.T, sources map[string]string) string {
	t.Helper()

	dir := tempDir(t)
	for name, content := range sources {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create proto directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

// generateDescriptorSet runs protoc to generate a FileDescriptorSet.
// It returns the parsed FileDescriptorSet.
func generateDescriptorSet(t *testing.T, protoPath string, protoFiles ...string) *descriptorpb.FileDescriptorSet {
	t.Helper()

	outputPath := filepath.Join(tempDir(t), "descriptors.pb")
	args := []string{
		"--descriptor_set_out=" + outputPath,
		"--include_imports",
		"--include_source_info",
		"--proto_path=" + protoPath,
	}
	args = append(args, protoFiles...)

	cmd := exec.Command("protoc", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to run protoc: %v\nOutput: %s\nArgs: %v", err, output, args)
	}

	return loadDescriptorSet(t, outputPath)
}

// runPlugin drives plugin.Generate the way the binary does, with parameter
// passed through protogen to the registered flags.
func runPlugin(t *testing.T, fds *descriptorpb.FileDescriptorSet, parameter string, filesToGenerate ...string) *pluginpb.CodeGeneratorResponse {
	t.Helper()

	var flags flag.FlagSet
	params := plugin.RegisterFlags(&flags)

	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: filesToGenerate,
		Parameter:      proto.String(parameter),
		ProtoFile:      fds.File,
	}
	p, err := protogen.Options{ParamFunc: flags.Set}.New(req)
	if err != nil {
		t.Fatalf("Failed to create protogen.Plugin: %v", err)
	}

	opts, err := params.Options("plugintest")
	if err != nil {
		t.Fatalf("Invalid parameter %q: %v", parameter, err)
	}
	// Generation errors are reported through the response.
	_ = plugin.Generate(p, opts)

	return p.Response()
}

// buildPlugin builds the plugin binary into a temporary directory.
func buildPlugin(t *testing.T) string {
	t.Helper()

	binary := filepath.Join(tempDir(t), "protoc-gen-openapi-schema")
	cmd := exec.Command("go", "build", "-o", binary, "./cmd/protoc-gen-openapi-schema")
	cmd.Dir = findWorkspaceRoot(t)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build plugin: %v\nOutput: %s", err, output)
	}
	return binary
}

// findWorkspaceRoot finds the root of the Go module by looking for go.mod.
func findWorkspaceRoot(t *testing.T) string {
	t.Helper()

	// Try using go list first
	cmd := exec.Command("go", "list", "-m", "-f", "{{.Dir}}")
	output, err := cmd.Output()
	if err == nil {
		return strings.TrimSpace(string(output))
	}

	// Fallback: walk up from current directory
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("Could not find go.mod in any parent directory")
		}
		dir = parent
	}
}

// generatedContent returns the files of a response by name.
func generatedContent(t *testing.T, resp *pluginpb.CodeGeneratorResponse) map[string]string {
	t.Helper()

	if resp.GetError() != "" {
		t.Fatalf("Plugin response error: %s", resp.GetError())
	}

	result := make(map[string]string)
	for _, file := range resp.File {
		if file.Content != nil {
			result[file.GetName()] = file.GetContent()
		}
	}
	return result
}

// tempDir creates a temporary directory for test artifacts.
func tempDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "protoc-gen-openapi-schema-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}
