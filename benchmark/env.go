package benchmark

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

// RandomizedOffsetVar is set in every child's environment with a fresh random
// integer string so that the environment block size varies across otherwise
// identical invocations, perturbing memory layout.
const RandomizedOffsetVar = "VERNIER_RANDOMIZED_ENVIRONMENT_OFFSET"

var envKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// EnvVar is a single KEY=VALUE pair applied to spawned commands.
type EnvVar struct {
	Key   string
	Value string
}

// ParseEnvVar splits a "KEY=VALUE" argument and validates the key.
func ParseEnvVar(s string) (EnvVar, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return EnvVar{}, configErrorf("invalid environment variable %q: expected KEY=VALUE", s)
	}
	v := EnvVar{Key: key, Value: value}
	if err := v.Validate(); err != nil {
		return EnvVar{}, err
	}
	return v, nil
}

func (v EnvVar) String() string {
	return v.Key + "=" + v.Value
}

// Validate rejects keys the target shell could not accept.
func (v EnvVar) Validate() error {
	if !envKeyPattern.MatchString(v.Key) {
		return configErrorf("invalid environment variable key %q", v.Key)
	}
	return nil
}

// EnvVars is an ordered overlay applied on top of the parent environment.
type EnvVars []EnvVar

// Validate checks every entry.
func (vs EnvVars) Validate() error {
	for _, v := range vs {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToSlice renders the overlay in the form exec.Cmd.Env expects.
func (vs EnvVars) ToSlice() []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.String())
	}
	return out
}

// randomizedOffset generates the per-spawn layout perturbation variable.
func randomizedOffset() string {
	return RandomizedOffsetVar + "=" + strconv.FormatUint(rand.Uint64(), 10)
}
