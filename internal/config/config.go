// Package config loads codegen.yaml, the file describing one generation run:
// which models to load, which service and protocol to generate for, and
// where the output goes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"codec-generator/internal/common"
	"codec-generator/internal/hooks"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
)

// File is a parsed codegen.yaml.
type File struct {
	Version string `yaml:"version"`
	// Models are Smithy JSON AST files, relative to the config file.
	Models StringOrArray `yaml:"models"`
	// Service is the absolute ID of the service to generate.
	Service  string `yaml:"service"`
	Protocol string `yaml:"protocol"`
	// Target is "client" or "server".
	Target  string `yaml:"target"`
	Package string `yaml:"package"`
	// Output is the output directory, relative to the config file.
	Output string `yaml:"output"`
	// SuppressDefaults omits members equal to their modeled default.
	SuppressDefaults bool `yaml:"suppressDefaults"`
	// Hooks are built-in hook names, applied in order.
	Hooks []string `yaml:"hooks"`

	dir string
}

// StringOrArray accepts a single string or a list of strings.
type StringOrArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str == "" {
			*s = StringOrArray{}
		} else {
			*s = StringOrArray{str}
		}

		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// LoadFile loads a config file. Relative paths in it resolve against the
// file's directory.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f.dir = filepath.Dir(path)

	return f, nil
}

// Parse parses config YAML. Relative paths resolve against the working
// directory.
func Parse(data []byte) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}

	if f.Target == "" {
		f.Target = policy.Client.String()
	}

	if f.Output == "" {
		f.Output = "generated"
	}
}

// PackageName returns the configured package, or one derived from the
// output directory.
func (f *File) PackageName() string {
	if f.Package != "" {
		return f.Package
	}

	return common.PkgAlias(f.Output)
}

// Validate checks the protocol, target and hook names, and that a service
// and at least one model are named.
func (f *File) Validate() error {
	var errs []error

	if len(f.Models) == 0 {
		errs = append(errs, errors.New("no models configured"))
	}

	if f.Service == "" {
		errs = append(errs, errors.New("no service configured"))
	}

	if _, err := protocol.Lookup(f.Protocol); err != nil {
		errs = append(errs, err)
	}

	if _, err := policy.ParseTarget(f.Target); err != nil {
		errs = append(errs, err)
	}

	for _, name := range f.Hooks {
		if _, err := hooks.Builtin(name); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (f *File) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || f.dir == "" {
		return path
	}

	return filepath.Join(f.dir, path)
}

// ModelPaths returns the model files with relative paths resolved.
func (f *File) ModelPaths() []string {
	out := make([]string, 0, len(f.Models))
	for _, m := range f.Models {
		out = append(out, f.resolve(m))
	}

	return out
}

// OutputDir returns the output directory with a relative path resolved.
func (f *File) OutputDir() string {
	return f.resolve(f.Output)
}

// HookRegistry instantiates the configured built-in hooks in order.
func (f *File) HookRegistry() (*hooks.Registry, error) {
	reg := &hooks.Registry{}

	for _, name := range f.Hooks {
		h, err := hooks.Builtin(name)
		if err != nil {
			return nil, err
		}

		reg.Register(h)
	}

	return reg, nil
}
