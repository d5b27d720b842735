// Package report prints the console summary of a run.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	clrGreen  = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	clrYellow = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	clrRed    = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	clrCyan   = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}
)

type styles struct {
	ok    lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
	info  lipgloss.Style
	total lipgloss.Style
}

// Reporter writes one line per event. Failures go to the error stream.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	styles *styles
}

// New creates a Reporter. Colour is applied only when color is true; callers
// pass the result of a terminal check on out.
func New(out, errOut io.Writer, color bool) *Reporter {
	r := &Reporter{out: out, errOut: errOut}
	if color {
		rr := lipgloss.NewRenderer(out)
		re := lipgloss.NewRenderer(errOut)
		r.styles = &styles{
			ok:    rr.NewStyle().Foreground(clrGreen),
			warn:  rr.NewStyle().Foreground(clrYellow),
			err:   re.NewStyle().Foreground(clrRed),
			info:  rr.NewStyle().Foreground(clrCyan),
			total: rr.NewStyle().Bold(true).Foreground(clrGreen),
		}
	}
	return r
}

func (r *Reporter) line(w io.Writer, style func(*styles) lipgloss.Style, text string) {
	if r.styles != nil {
		text = style(r.styles).Render(text)
	}
	fmt.Fprintln(w, text)
}

// Found prints the match count, or the not-found line when there are none
func (r *Reporter) Found(n int) {
	switch n {
	case 0:
		r.line(r.out, func(s *styles) lipgloss.Style { return s.warn }, "Target file/directory not found.")
	case 1:
		r.line(r.out, func(s *styles) lipgloss.Style { return s.info }, "Found 1 matching file/directory.")
	default:
		r.line(r.out, func(s *styles) lipgloss.Style { return s.info }, fmt.Sprintf("Found %d matching files/directories.", n))
	}
}

func (r *Reporter) Deleted(path string) {
	r.line(r.out, func(s *styles) lipgloss.Style { return s.ok }, fmt.Sprintf("File/Directory %s deleted successfully.", path))
}

func (r *Reporter) Failed(path string, err error) {
	r.line(r.errOut, func(s *styles) lipgloss.Style { return s.err }, fmt.Sprintf("Failed to delete file/directory %s. Reason %v", path, err))
}

func (r *Reporter) Skipped(path string) {
	r.line(r.out, func(s *styles) lipgloss.Style { return s.warn }, fmt.Sprintf("Skipping file/directory %s", path))
}

// WouldRemove is the dry-run counterpart of Deleted
func (r *Reporter) WouldRemove(path string) {
	r.line(r.out, func(s *styles) lipgloss.Style { return s.info }, fmt.Sprintf("Would remove file/directory %s", path))
}

func (r *Reporter) Freed(bytes int64) {
	r.line(r.out, func(s *styles) lipgloss.Style { return s.total }, FormatBytes(bytes)+" freed.")
}

func (r *Reporter) WouldFree(bytes int64) {
	r.line(r.out, func(s *styles) lipgloss.Style { return s.total }, FormatBytes(bytes)+" would be freed.")
}
