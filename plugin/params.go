package plugin

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/alis-exchange/protoc-gen-openapi-schema/profile"
)

// Params holds the raw plugin parameters passed through protoc, e.g.
//
//	--openapi-schema_opt=dialects=openapi3:jsonschema,base_package=acme.v1
//
// protoc splits parameters on commas, so list values are separated by colons.
type Params struct {
	Dialects    string
	BasePackage string
	GenerateAll bool
	Profile     string
	LogLevel    string
}

// RegisterFlags binds the plugin parameters to fs. Pass fs.Set as
// protogen.Options.ParamFunc.
func RegisterFlags(fs *flag.FlagSet) *Params {
	p := &Params{}
	fs.StringVar(&p.Dialects, "dialects", "swagger2:openapi3", "colon separated output formats (swagger2, openapi3 or jsonschema)")
	fs.StringVar(&p.BasePackage, "base_package", "", "proto package whose types use short references (default: each file's package)")
	fs.BoolVar(&p.GenerateAll, "generate_all", true, "generate every message unless its options disable it")
	fs.StringVar(&p.Profile, "profile", "", "colon separated profile files mapping proto types to target types")
	fs.StringVar(&p.LogLevel, "log_level", "warn", "log level: debug, info, warn, error")
	return p
}

// Options validates the parameters and resolves them into generation options.
func (p *Params) Options(version string) (Options, error) {
	opts := Options{
		BasePackage: p.BasePackage,
		GenerateAll: p.GenerateAll,
		Version:     version,
	}

	formats, err := parseFormats(p.Dialects)
	if err != nil {
		return Options{}, err
	}
	opts.Formats = formats

	level, err := log.ParseLevel(p.LogLevel)
	if err != nil {
		return Options{}, fmt.Errorf("invalid log_level %q: %w", p.LogLevel, err)
	}
	// stdout carries the CodeGeneratorResponse.
	opts.Logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:  level,
		Prefix: "protoc-gen-openapi-schema",
	})

	if p.Profile != "" {
		prof, err := profile.Load(splitList(p.Profile)...)
		if err != nil {
			return Options{}, err
		}
		opts.Profile = prof
	}

	return opts, nil
}

// parseFormats parses a colon separated list of formats, dropping duplicates.
func parseFormats(s string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)
	for _, name := range splitList(s) {
		f := Format(name)
		switch f {
		case FormatSwagger2, FormatOpenAPI3, FormatJSONSchema:
		default:
			return nil, fmt.Errorf("unknown dialect %q", name)
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no dialect selected")
	}
	return formats, nil
}

// splitList splits on colons. Commas are accepted too for callers that do not
// go through protoc.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ',' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
