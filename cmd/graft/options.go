package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sghaida/graft/gen"
)

// defaultOptionsFile is looked up in the working directory when --config is
// not given.
const defaultOptionsFile = "graft.yaml"

// Options is the tool configuration, merged from the optional yaml file and
// command-line flags. Flags win.
type Options struct {
	// OutSuffix is appended to the lowercased root component name to form
	// the generated file name.
	OutSuffix string `yaml:"outSuffix"`

	// Header is extra comment text placed in every generated file.
	Header string `yaml:"header"`

	// FullGraphValidation also validates subcomponent subgraphs in
	// isolation, surfacing problems only visible from a child root.
	FullGraphValidation bool `yaml:"fullGraphValidation"`

	// DisabledValidators names validators to skip, e.g. "nullability".
	DisabledValidators []string `yaml:"disabledValidators"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

func defaultOptions() Options {
	return Options{OutSuffix: gen.DefaultSuffix}
}

// loadOptions reads the options file. An explicitly named file must exist; the
// default file is optional.
func loadOptions(path string) (Options, error) {
	opts := defaultOptions()

	explicit := path != ""
	if !explicit {
		path = defaultOptionsFile
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return opts, nil
		}
		return opts, fmt.Errorf("reading options: %w", err)
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("parsing %s: %w", path, err)
	}
	if opts.OutSuffix == "" {
		opts.OutSuffix = gen.DefaultSuffix
	}
	return opts, nil
}

func (o Options) validatorDisabled(name string) bool {
	for _, n := range o.DisabledValidators {
		if n == name {
			return true
		}
	}
	return false
}
