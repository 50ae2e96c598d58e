// Package profile resolves protobuf types to configured target types.
//
// A profile is an ordered list of profile files, each holding type configs:
//
//	types:
//	  - type: acme.v1.Money
//	    target: com.acme.Money
//	    adapter: com.acme.MoneyAdapter#ADAPTER
//
// Lookups scan files and their configs in order; the first config whose type
// matches wins.
package profile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TypeConfig maps one protobuf type to a target type and an adapter.
type TypeConfig struct {
	Type    string `yaml:"type"`
	Target  string `yaml:"target"`
	Adapter string `yaml:"adapter,omitempty"`
}

// File is a single profile file.
type File struct {
	Path  string       `yaml:"-"`
	Types []TypeConfig `yaml:"types"`
}

// Profile is an immutable, ordered set of profile files.
type Profile struct {
	files []File
}

// New returns a profile over the given files, in lookup order.
func New(files ...File) Profile {
	return Profile{files: append([]File(nil), files...)}
}

// Parse reads a single profile file.
func Parse(r io.Reader, path string) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	for i, tc := range f.Types {
		if tc.Type == "" {
			return File{}, fmt.Errorf("profile %s: entry %d has no type", path, i)
		}
		if tc.Adapter != "" {
			if _, err := ParseAdapterConstant(tc.Adapter); err != nil {
				return File{}, fmt.Errorf("profile %s: entry %d: %w", path, i, err)
			}
		}
	}
	f.Path = path
	return f, nil
}

// Load reads the given profile files from disk, in order.
func Load(paths ...string) (Profile, error) {
	files := make([]File, 0, len(paths))
	for _, path := range paths {
		fh, err := os.Open(path)
		if err != nil {
			return Profile{}, fmt.Errorf("failed to open profile: %w", err)
		}
		f, err := Parse(fh, path)
		fh.Close()
		if err != nil {
			return Profile{}, err
		}
		files = append(files, f)
	}
	return New(files...), nil
}

// Target returns the configured target type of protoType.
func (p Profile) Target(protoType string) (string, bool) {
	tc, ok := p.typeConfig(protoType)
	if !ok || tc.Target == "" {
		return "", false
	}
	return tc.Target, true
}

// Adapter returns the configured adapter constant of protoType. Parse rejects
// malformed adapters, so only files passed to New unchecked can fail here.
func (p Profile) Adapter(protoType string) (AdapterConstant, bool) {
	tc, ok := p.typeConfig(protoType)
	if !ok || tc.Adapter == "" {
		return AdapterConstant{}, false
	}
	ac, err := ParseAdapterConstant(tc.Adapter)
	if err != nil {
		return AdapterConstant{}, false
	}
	return ac, true
}

// typeConfig returns the first config for protoType.
func (p Profile) typeConfig(protoType string) (TypeConfig, bool) {
	for _, f := range p.files {
		for _, tc := range f.Types {
			if tc.Type == protoType {
				return tc, true
			}
		}
	}
	return TypeConfig{}, false
}

// AdapterConstant names a static member holding an adapter, written Type#MEMBER.
type AdapterConstant struct {
	TypeName   string
	MemberName string
}

// ParseAdapterConstant parses the Type#MEMBER notation.
func ParseAdapterConstant(s string) (AdapterConstant, error) {
	typeName, member, ok := strings.Cut(s, "#")
	if !ok || typeName == "" || member == "" {
		return AdapterConstant{}, fmt.Errorf("illegal adapter constant %q: want Type#MEMBER", s)
	}
	return AdapterConstant{TypeName: typeName, MemberName: member}, nil
}

// String returns the Type#MEMBER notation.
func (a AdapterConstant) String() string {
	return a.TypeName + "#" + a.MemberName
}
