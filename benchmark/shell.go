package benchmark

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/shlex"
)

// Interpreter is the program command strings are run through. The set of
// variants is closed: the platform default shell, or a user override parsed
// from a single prefix string.
type Interpreter struct {
	Path string
	Args []string
}

// PlatformInterpreter returns the default shell for the current OS.
func PlatformInterpreter() Interpreter {
	if runtime.GOOS == "windows" {
		return Interpreter{Path: "cmd.exe", Args: []string{"/C"}}
	}
	return Interpreter{Path: "/bin/sh", Args: []string{"-c"}}
}

// ParseInterpreter builds an Interpreter from a user override such as
// "bash --norc". The command-string flag (-c, or /C for cmd.exe) is appended
// automatically; the benchmarked command becomes the final argument.
func ParseInterpreter(override string) (Interpreter, error) {
	if strings.TrimSpace(override) == "" {
		return PlatformInterpreter(), nil
	}
	words, err := shlex.Split(override)
	if err != nil {
		return Interpreter{}, configErrorf("invalid shell %q: %v", override, err)
	}
	if len(words) == 0 {
		return Interpreter{}, configErrorf("invalid shell %q", override)
	}
	interp := Interpreter{Path: words[0], Args: words[1:]}
	base := strings.ToLower(filepath.Base(interp.Path))
	if base == "cmd" || base == "cmd.exe" {
		interp.Args = append(interp.Args, "/C")
	} else {
		interp.Args = append(interp.Args, "-c")
	}
	return interp, nil
}

// lookup verifies the interpreter binary exists before anything runs and
// pins its resolved path.
func (i *Interpreter) lookup() error {
	path, err := exec.LookPath(i.Path)
	if err != nil {
		return &SpawnError{Path: i.Path, Err: err}
	}
	i.Path = path
	return nil
}

// argv assembles the full command line for one spawn.
func (i Interpreter) argv(command string) []string {
	out := make([]string, 0, len(i.Args)+2)
	out = append(out, i.Path)
	out = append(out, i.Args...)
	return append(out, command)
}

func (i Interpreter) String() string {
	return strings.Join(append([]string{i.Path}, i.Args...), " ")
}
