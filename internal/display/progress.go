// Package display renders scan progress and similarity reports for the
// terminal. Colors are enabled only when stdout is a TTY.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// progressInterval is how many comparisons pass between progress updates.
const progressInterval = 100

// PairProgress reports batch-comparison progress on a single rewritten
// line, updating every progressInterval pairs so O(n^2) scans stay quiet.
type PairProgress struct {
	writer  io.Writer
	total   int
	current int
}

// NewPairProgress creates a progress reporter for the given pair count.
func NewPairProgress(w io.Writer, total int) *PairProgress {
	return &PairProgress{writer: w, total: total}
}

// Start prints the scan header.
func (p *PairProgress) Start() {
	fmt.Fprintf(p.writer, "Comparing %d pairs...\n", p.total)
}

// Step records one completed comparison, refreshing the progress line at
// the reporting interval.
func (p *PairProgress) Step() {
	p.current++
	if p.current%progressInterval == 0 {
		fmt.Fprintf(p.writer, "  checked %d/%d pairs...\r", p.current, p.total)
	}
}

// Done finishes the progress line.
func (p *PairProgress) Done() {
	fmt.Fprintf(p.writer, "  checked %d/%d pairs. Done.     \n", p.current, p.total)
}

// ColorsEnabled reports whether stdout supports colored output.
func ColorsEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Palette groups the colors used for report rendering.
type Palette struct {
	Header  *color.Color
	Score   *color.Color
	Verdict *color.Color
	Label   *color.Color
	Warn    *color.Color
}

// NewPalette builds the standard palette. When enabled is false every
// color is a no-op, so callers can render unconditionally.
func NewPalette(enabled bool) *Palette {
	p := &Palette{
		Header:  color.New(color.FgCyan, color.Bold),
		Score:   color.New(color.FgGreen),
		Verdict: color.New(color.FgYellow),
		Label:   color.New(color.FgCyan),
		Warn:    color.New(color.FgRed),
	}
	if !enabled {
		for _, c := range []*color.Color{p.Header, p.Score, p.Verdict, p.Label, p.Warn} {
			c.DisableColor()
		}
	}
	return p
}
