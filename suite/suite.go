package suite

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/attunehq/vernier/benchmark"
)

// File is the on-disk shape of a benchmark suite. File-level hooks apply to
// every command unless the command overrides them.
type File struct {
	Name          string            `yaml:"name"`
	Commands      []Command         `yaml:"commands"`
	Parameters    []Parameter       `yaml:"parameters"`
	Warmup        int               `yaml:"warmup"`
	Runs          Runs              `yaml:"runs"`
	Shell         string            `yaml:"shell"`
	Env           map[string]string `yaml:"env"`
	Setup         string            `yaml:"setup"`
	Prepare       string            `yaml:"prepare"`
	Cleanup       string            `yaml:"cleanup"`
	IgnoreFailure bool              `yaml:"ignore_failure"`
	TimeUnit      string            `yaml:"time_unit"`
	Export        Export            `yaml:"export"`
}

type Command struct {
	Run     string `yaml:"run"`
	Name    string `yaml:"name"`
	Setup   string `yaml:"setup"`
	Prepare string `yaml:"prepare"`
	Cleanup string `yaml:"cleanup"`
}

// Parameter declares one dimension, either an explicit value list or a
// numeric scan.
type Parameter struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
	Scan   *Scan    `yaml:"scan"`
}

type Scan struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Runs mirrors the run-count flags: exact wins over min/max.
type Runs struct {
	Exact int `yaml:"exact"`
	Min   int `yaml:"min"`
	Max   int `yaml:"max"`
}

// Export maps formats to output paths.
type Export struct {
	JSON     string `yaml:"json"`
	CSV      string `yaml:"csv"`
	Markdown string `yaml:"markdown"`
	AsciiDoc string `yaml:"asciidoc"`
}

// Load reads and parses a suite file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &benchmark.ConfigError{Msg: fmt.Sprintf("cannot read suite file %q: %v", path, err)}
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &benchmark.ConfigError{Msg: fmt.Sprintf("cannot parse suite file %q: %v", path, err)}
	}
	return &f, nil
}

// Options converts the suite into engine options. Command-line flags may
// override individual fields afterwards.
func (f *File) Options() (benchmark.Options, error) {
	opts := benchmark.Options{
		Name:          f.Name,
		Warmup:        f.Warmup,
		Runs:          benchmark.RunCounts{Exact: f.Runs.Exact, Min: f.Runs.Min, Max: f.Runs.Max},
		Shell:         f.Shell,
		IgnoreFailure: f.IgnoreFailure,
	}

	for i, c := range f.Commands {
		if c.Run == "" {
			return opts, &benchmark.ConfigError{Msg: fmt.Sprintf("suite command %d has no run string", i+1)}
		}
		opts.Commands = append(opts.Commands, benchmark.CommandTemplate{
			Command: c.Run,
			Name:    c.Name,
			Setup:   firstNonEmpty(c.Setup, f.Setup),
			Prepare: firstNonEmpty(c.Prepare, f.Prepare),
			Cleanup: firstNonEmpty(c.Cleanup, f.Cleanup),
		})
	}

	for _, p := range f.Parameters {
		if p.Scan != nil && len(p.Values) > 0 {
			return opts, &benchmark.ConfigError{Msg: fmt.Sprintf("parameter %q declares both values and a scan", p.Name)}
		}
		def := benchmark.ParameterDefinition{Name: p.Name, Values: p.Values}
		if p.Scan != nil {
			step := p.Scan.Step
			if step == 0 {
				// Same default as the NAME=MIN:MAX flag form.
				step = 1
			}
			def.Scan = &benchmark.NumericScan{Min: p.Scan.Min, Max: p.Scan.Max, Step: step}
		}
		opts.Params = append(opts.Params, def)
	}

	// Map order is random; sort for reproducible child environments.
	keys := make([]string, 0, len(f.Env))
	for k := range f.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts.Env = append(opts.Env, benchmark.EnvVar{Key: k, Value: f.Env[k]})
	}

	if f.TimeUnit != "" {
		u, err := benchmark.ParseTimeUnit(f.TimeUnit)
		if err != nil {
			return opts, err
		}
		opts.PreferredUnit = &u
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
