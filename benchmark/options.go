package benchmark

import "time"

// CommandTemplate is one command as given by the user, before parameter
// expansion. Hooks are optional and share the command's parameter bindings.
type CommandTemplate struct {
	Command string
	Name    string
	Setup   string
	Prepare string
	Cleanup string
}

// RunCounts configures the scheduler. Exact takes the loop out of adaptive
// mode entirely; otherwise Min/Max bound the adaptive count (zero means
// default min, no max).
type RunCounts struct {
	Exact int
	Min   int
	Max   int
}

// Options configures a benchmark session.
type Options struct {
	Commands []CommandTemplate
	Params   []ParameterDefinition

	Warmup     int
	Runs       RunCounts
	TargetTime time.Duration

	// CalibrationRuns overrides the spawn-overhead sample count;
	// SkipCalibration disables the subtraction entirely.
	CalibrationRuns int
	SkipCalibration bool

	// Shell selects the interpreter ("/bin/sh", "bash --norc", ...). Empty
	// picks the platform default.
	Shell string

	Env           EnvVars
	IgnoreFailure bool
	ShowOutput    bool

	// Name labels the session in exports.
	Name string

	// PreferredUnit forces the display unit; nil auto-picks per report.
	PreferredUnit *TimeUnit

	// Progress receives live updates; nil means silent.
	Progress Progress

	// OnResult is called with the growing report after each unit finishes,
	// so exporters can keep their files current. A non-nil error aborts the
	// session.
	OnResult func(*Report) error
}

func (o *Options) validate() error {
	if len(o.Commands) == 0 {
		return &ConfigError{Msg: "no commands to benchmark"}
	}
	for _, c := range o.Commands {
		if c.Command == "" {
			return &ConfigError{Msg: "empty command"}
		}
	}
	if o.Runs.Exact < 0 || o.Runs.Min < 0 || o.Runs.Max < 0 {
		return &ConfigError{Msg: "run counts must not be negative"}
	}
	if o.Runs.Exact > 0 && (o.Runs.Min > 0 || o.Runs.Max > 0) {
		return &ConfigError{Msg: "an exact run count cannot be combined with min/max run bounds"}
	}
	if o.Runs.Min > 0 && o.Runs.Max > 0 && o.Runs.Min > o.Runs.Max {
		return configErrorf("min run count %d exceeds max %d", o.Runs.Min, o.Runs.Max)
	}
	if o.Warmup < 0 {
		return &ConfigError{Msg: "warmup count must not be negative"}
	}
	if o.CalibrationRuns < 0 {
		return &ConfigError{Msg: "calibration run count must not be negative"}
	}
	for _, p := range o.Params {
		if err := validateParamName(p.Name); err != nil {
			return err
		}
	}
	return o.Env.Validate()
}
