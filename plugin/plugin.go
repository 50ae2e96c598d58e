package plugin

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/compiler/protogen"

	"github.com/alis-exchange/protoc-gen-openapi-schema/profile"
)

// Format is an output document format.
type Format string

const (
	FormatSwagger2   Format = "swagger2"
	FormatOpenAPI3   Format = "openapi3"
	FormatJSONSchema Format = "jsonschema"
)

// Options configures a generation run.
type Options struct {
	// Formats lists the documents written per proto file.
	Formats []Format

	// BasePackage overrides the proto package used to shorten references.
	// Empty means each file uses its own package.
	BasePackage string

	// GenerateAll includes every message unless its options disable it.
	GenerateAll bool

	// Profile annotates definitions with configured target types.
	Profile profile.Profile

	// Logger receives diagnostics. It must not write to stdout.
	Logger *log.Logger

	// Version is recorded in the info section of each document.
	Version string
}

// Generate writes the requested documents for every file marked for generation.
//
// Documents are built concurrently, one goroutine per file, and written to the
// response in file order. The first mapping error aborts the run.
func Generate(plugin *protogen.Plugin, opts Options) error {
	gr := &Generator{Version: opts.Version, opts: opts}
	if gr.opts.Logger == nil {
		gr.opts.Logger = log.New(io.Discard)
	}

	var files []*protogen.File
	for _, f := range plugin.Files {
		if f.Generate {
			files = append(files, f)
		}
	}

	outputs := make([][]generatedDocument, len(files))
	var g errgroup.Group
	for i, f := range files {
		g.Go(func() error {
			docs, err := gr.generateFile(f)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Desc.Path(), err)
			}
			outputs[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		plugin.Error(err)
		return err
	}

	for i, f := range files {
		for _, doc := range outputs[i] {
			out := plugin.NewGeneratedFile(doc.filename, f.GoImportPath)
			if _, err := out.Write(doc.content); err != nil {
				plugin.Error(err)
				return err
			}
			gr.opts.Logger.Debug("wrote document", "file", doc.filename, "bytes", len(doc.content))
		}
	}

	return nil
}

