// Package ux renders benchmark progress and results on the terminal.
package ux

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/attunehq/vernier/benchmark"
)

// Style selects how much decoration terminal output gets.
type Style int

const (
	// StyleAuto resolves to full on a terminal and basic otherwise.
	StyleAuto Style = iota
	// StyleBasic is plain text: no color, no progress bars.
	StyleBasic
	// StyleFull is color plus progress bars.
	StyleFull
	// StyleNoColor keeps the progress bars but drops color.
	StyleNoColor
)

// ParseStyle accepts the --style flag spellings.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "", "auto":
		return StyleAuto, nil
	case "basic":
		return StyleBasic, nil
	case "full":
		return StyleFull, nil
	case "nocolor", "no-color":
		return StyleNoColor, nil
	}
	return StyleAuto, &benchmark.ConfigError{Msg: "unknown style " + s + " (expected auto, basic, full, or nocolor)"}
}

// Detect resolves StyleAuto against the file the output goes to.
func (s Style) Detect(f *os.File) Style {
	if s != StyleAuto {
		return s
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return StyleFull
	}
	return StyleBasic
}

func (s Style) bars() bool  { return s == StyleFull || s == StyleNoColor }
func (s Style) color() bool { return s == StyleFull }

var (
	colorCommand = lipgloss.Color("14") // bright cyan
	colorGood    = lipgloss.Color("10") // bright green
	colorSpread  = lipgloss.Color("10")
	colorWarn    = lipgloss.Color("11") // bright yellow
	colorBad     = lipgloss.Color("9")  // bright red
	colorMuted   = lipgloss.Color("8")
)

// styleSet holds the pre-built lipgloss styles for one Style level. With
// color off every entry is the zero style, which renders text unchanged.
type styleSet struct {
	Command lipgloss.Style
	Mean    lipgloss.Style
	Spread  lipgloss.Style
	Extreme lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

func stylesFor(s Style) styleSet {
	if !s.color() {
		return styleSet{}
	}
	return styleSet{
		Command: lipgloss.NewStyle().Bold(true).Foreground(colorCommand),
		Mean:    lipgloss.NewStyle().Bold(true).Foreground(colorGood),
		Spread:  lipgloss.NewStyle().Foreground(colorSpread),
		Extreme: lipgloss.NewStyle().Foreground(colorCommand),
		Warning: lipgloss.NewStyle().Foreground(colorWarn),
		Error:   lipgloss.NewStyle().Foreground(colorBad),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	}
}
