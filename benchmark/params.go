package benchmark

import (
	"strconv"
	"strings"
)

// NumericScan describes a parameter swept from Min to Max in Step increments.
type NumericScan struct {
	Min  float64
	Max  float64
	Step float64
}

// ParameterDefinition declares one parameter dimension: either an explicit
// ordered value list or a numeric scan. Exactly one of Values/Scan is set.
type ParameterDefinition struct {
	Name   string
	Values []string
	Scan   *NumericScan
}

// expand materializes the dimension's concrete values in order.
func (p ParameterDefinition) expand() ([]string, error) {
	if p.Scan != nil {
		return p.Scan.expand(p.Name)
	}
	if len(p.Values) == 0 {
		return nil, configErrorf("parameter %q has no values", p.Name)
	}
	return p.Values, nil
}

func (s *NumericScan) expand(name string) ([]string, error) {
	if s.Step <= 0 {
		return nil, configErrorf("parameter scan %q: step must be positive, got %v", name, s.Step)
	}
	if s.Min > s.Max {
		return nil, configErrorf("parameter scan %q: min %v exceeds max %v", name, s.Min, s.Max)
	}

	// Values are min, min+step, ... up to max inclusive, with a small
	// tolerance so 0:1:0.1 still reaches 1.0.
	const tolerance = 1e-9
	prec := scanPrecision(s.Min, s.Step)
	var values []string
	for i := 0; ; i++ {
		v := s.Min + float64(i)*s.Step
		if v > s.Max+tolerance {
			break
		}
		values = append(values, formatScanValue(v, prec))
	}
	return values, nil
}

// scanPrecision derives how many decimal places the rendered values need from
// the scan's own inputs, so integer scans print "2" and not "2.000000".
func scanPrecision(min, step float64) int {
	prec := 0
	for _, v := range []float64{min, step} {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if i := strings.IndexByte(s, '.'); i >= 0 {
			if d := len(s) - i - 1; d > prec {
				prec = d
			}
		}
	}
	return prec
}

func formatScanValue(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if prec > 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// ParseParameterList parses a "NAME=v1,v2,..." declaration.
func ParseParameterList(arg string) (ParameterDefinition, error) {
	name, rest, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return ParameterDefinition{}, configErrorf("invalid parameter list %q: expected NAME=v1,v2,...", arg)
	}
	if err := validateParamName(name); err != nil {
		return ParameterDefinition{}, err
	}
	values := strings.Split(rest, ",")
	if len(values) == 1 && values[0] == "" {
		return ParameterDefinition{}, configErrorf("parameter list %q has no values", name)
	}
	return ParameterDefinition{Name: name, Values: values}, nil
}

// ParseParameterScan parses a "NAME=MIN:MAX[:STEP]" declaration. STEP
// defaults to 1.
func ParseParameterScan(arg string) (ParameterDefinition, error) {
	name, rest, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return ParameterDefinition{}, configErrorf("invalid parameter scan %q: expected NAME=MIN:MAX[:STEP]", arg)
	}
	if err := validateParamName(name); err != nil {
		return ParameterDefinition{}, err
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return ParameterDefinition{}, configErrorf("invalid parameter scan %q: expected NAME=MIN:MAX[:STEP]", arg)
	}
	bounds := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return ParameterDefinition{}, configErrorf("parameter scan %q: %q is not a number", name, part)
		}
		bounds[i] = v
	}
	scan := &NumericScan{Min: bounds[0], Max: bounds[1], Step: 1}
	if len(bounds) == 3 {
		scan.Step = bounds[2]
	}
	return ParameterDefinition{Name: name, Scan: scan}, nil
}

func validateParamName(name string) error {
	if strings.ContainsAny(name, "{}= \t") {
		return configErrorf("invalid parameter name %q", name)
	}
	return nil
}

// Unit is one fully resolved command plus its parameter binding.
type Unit struct {
	Command    string
	Name       string
	Setup      string
	Prepare    string
	Cleanup    string
	Params     map[string]string
	ParamOrder []string
}

// ExpandUnits builds the ordered benchmark units: command templates form the
// outer loop and parameter combinations the inner loop, combinations iterated
// with the first declared parameter varying slowest.
func ExpandUnits(templates []CommandTemplate, params []ParameterDefinition) ([]*Unit, error) {
	if len(templates) == 0 {
		return nil, &ConfigError{Msg: "no commands to benchmark"}
	}
	bindings, order, err := expandBindings(params)
	if err != nil {
		return nil, err
	}

	units := make([]*Unit, 0, len(templates)*len(bindings))
	for _, t := range templates {
		name := t.Name
		if name == "" {
			name = t.Command
		}
		for _, b := range bindings {
			units = append(units, &Unit{
				Command:    substitute(t.Command, b),
				Name:       substitute(name, b),
				Setup:      substitute(t.Setup, b),
				Prepare:    substitute(t.Prepare, b),
				Cleanup:    substitute(t.Cleanup, b),
				Params:     b,
				ParamOrder: order,
			})
		}
	}
	return units, nil
}

// expandBindings computes the Cartesian product of all parameter dimensions.
func expandBindings(params []ParameterDefinition) ([]map[string]string, []string, error) {
	if len(params) == 0 {
		return []map[string]string{nil}, nil, nil
	}

	names := make([]string, len(params))
	values := make([][]string, len(params))
	seen := make(map[string]bool, len(params))
	total := 1
	for i, p := range params {
		if seen[p.Name] {
			return nil, nil, configErrorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		vs, err := p.expand()
		if err != nil {
			return nil, nil, err
		}
		names[i] = p.Name
		values[i] = vs
		total *= len(vs)
	}

	bindings := make([]map[string]string, 0, total)
	idx := make([]int, len(params))
	for {
		b := make(map[string]string, len(params))
		for i, j := range idx {
			b[names[i]] = values[i][j]
		}
		bindings = append(bindings, b)

		// Odometer increment, last dimension fastest.
		k := len(idx) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(values[k]) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			break
		}
	}
	return bindings, names, nil
}

// substitute replaces {name} tokens with bound values. Tokens without a
// binding pass through as literal text.
func substitute(s string, binding map[string]string) string {
	if len(binding) == 0 || !strings.Contains(s, "{") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		open := strings.IndexByte(s[i:], '{')
		if open < 0 {
			b.WriteString(s[i:])
			break
		}
		open += i
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		end += open
		if val, ok := binding[s[open+1:end]]; ok {
			b.WriteString(s[i:open])
			b.WriteString(val)
			i = end + 1
		} else {
			b.WriteString(s[i : open+1])
			i = open + 1
		}
	}
	return b.String()
}
