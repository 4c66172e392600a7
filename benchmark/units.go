package benchmark

import "fmt"

// TimeUnit selects the unit used when rendering durations in reports.
type TimeUnit int

const (
	UnitSecond TimeUnit = iota
	UnitMillisecond
)

// ParseTimeUnit accepts the spellings used on the command line and in suite files.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch s {
	case "s", "second", "seconds":
		return UnitSecond, nil
	case "ms", "millisecond", "milliseconds":
		return UnitMillisecond, nil
	}
	return UnitSecond, configErrorf("unknown time unit %q (expected s or ms)", s)
}

// PickTimeUnit chooses a display unit so that sub-second results keep
// meaningful digits.
func PickTimeUnit(seconds float64) TimeUnit {
	if seconds < 1.0 {
		return UnitMillisecond
	}
	return UnitSecond
}

// Suffix returns the unit's short name.
func (u TimeUnit) Suffix() string {
	if u == UnitMillisecond {
		return "ms"
	}
	return "s"
}

// Value converts a duration in seconds to this unit.
func (u TimeUnit) Value(seconds float64) float64 {
	if u == UnitMillisecond {
		return seconds * 1e3
	}
	return seconds
}

// FormatValue renders the numeric part only, for tables that carry the unit
// in their header.
func (u TimeUnit) FormatValue(seconds float64) string {
	if u == UnitMillisecond {
		return fmt.Sprintf("%.1f", seconds*1e3)
	}
	return fmt.Sprintf("%.3f", seconds)
}

// Format renders a duration with its unit suffix.
func (u TimeUnit) Format(seconds float64) string {
	return u.FormatValue(seconds) + " " + u.Suffix()
}
