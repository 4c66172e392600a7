package ux

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// bar wraps progressbar for the session's phases. A nil bar is a no-op so
// basic-style output can skip bars without branching everywhere.
type bar struct {
	pb *progressbar.ProgressBar
}

func newBar(w io.Writer, total int, description string) *bar {
	width := 40
	if tw := terminalWidth(w); tw > 0 && tw-45 < width {
		width = tw - 45
		if width < 10 {
			width = 10
		}
	}
	return &bar{pb: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(width),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "|",
			BarEnd:        "|",
		}),
	)}
}

func (b *bar) set(n int) {
	if b != nil {
		_ = b.pb.Set(n)
	}
}

func (b *bar) changeMax(n int) {
	if b != nil {
		b.pb.ChangeMax(n)
	}
}

func (b *bar) describe(s string) {
	if b != nil {
		b.pb.Describe(s)
	}
}

func (b *bar) finish() {
	if b != nil {
		_ = b.pb.Finish()
		_ = b.pb.Clear()
	}
}

// terminalWidth reports the width of the terminal behind w, or zero when w
// is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}
