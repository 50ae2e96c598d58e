package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/alis-exchange/protoc-gen-openapi-schema/plugin"
)

// version can be set at build time via ldflags
var version string

func getVersion() string {
	// If version was set via ldflags, use it
	if version != "" {
		return version
	}

	// Try to get version from Go module info (works with go install)
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "development"
}

func main() {
	var flags flag.FlagSet
	params := plugin.RegisterFlags(&flags)

	showVersion := flag.Bool("version", false, "Print the version of protoc-gen-openapi-schema")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s\n", getVersion())
		os.Exit(0)
	}

	options := protogen.Options{
		ParamFunc: flags.Set,
	}

	options.Run(func(p *protogen.Plugin) error {
		p.SupportedFeatures = uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)

		opts, err := params.Options(getVersion())
		if err != nil {
			return err
		}
		return plugin.Generate(p, opts)
	})
}
