package benchmark

import "fmt"

// Stage identifies which phase of a unit's lifecycle an error came from.
type Stage string

const (
	StageSetup       Stage = "setup"
	StagePrepare     Stage = "prepare"
	StageWarmup      Stage = "warmup"
	StageCommand     Stage = "command"
	StageCleanup     Stage = "cleanup"
	StageCalibration Stage = "calibration"
)

// ConfigError reports an invalid configuration detected before any command runs.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// SpawnError reports an interpreter or command that could not be started at all.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to launch %q: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExecError reports a command that ran to completion but exited unsuccessfully.
type ExecError struct {
	Stage    Stage
	Command  string
	ExitCode int
}

func (e *ExecError) Error() string {
	if e.Stage == StageCommand || e.Stage == StageWarmup {
		return fmt.Sprintf("command %q terminated with exit code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s command %q terminated with exit code %d", e.Stage, e.Command, e.ExitCode)
}

// DegenerateError reports a measurement too close to the clock's resolution
// to support a relative-speed comparison.
type DegenerateError struct {
	Command string
	Mean    float64
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("mean time of %q is at the clock's resolution; relative speeds are undefined", e.Command)
}
