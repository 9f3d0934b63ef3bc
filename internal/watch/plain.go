package watch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// Printer renders validation results to a plain terminal, overwriting the
// previous frame in place. For terminals where the Bubbletea alternate
// screen is unwanted, such as CI logs or tmux panes.
type Printer struct {
	w         io.Writer
	color     bool
	path      string
	lastLines int
	checks    int
}

// NewPrinter creates a plain watch printer. If w is nil, defaults to
// os.Stdout.
func NewPrinter(w io.Writer, color bool, path string) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w, color: color, path: path}
}

// Run re-checks on every change signal until ctx is cancelled.
func (p *Printer) Run(ctx context.Context, check CheckFunc, changes <-chan struct{}) error {
	p.render(check())
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.w)
			return nil
		case <-changes:
			p.render(check())
		}
	}
}

func (p *Printer) render(res CheckResult) {
	p.checks++
	lines := p.buildLines(res)

	if p.lastLines > 0 {
		fmt.Fprintf(p.w, "\033[%dA", p.lastLines)
	}
	for _, line := range lines {
		fmt.Fprintf(p.w, "\033[K%s\n", line)
	}
	p.lastLines = len(lines)
}

func (p *Printer) buildLines(res CheckResult) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("taskdeps watch — %s", p.path))

	checked := "never"
	if !res.At.IsZero() {
		checked = res.At.Format("15:04:05")
	}
	lines = append(lines, fmt.Sprintf("checks: %d  last: %s", p.checks, checked))
	lines = append(lines, "")

	switch {
	case res.Err != nil:
		lines = append(lines, fmt.Sprintf("  %s✗ load failed: %v%s", p.c(colorRed), res.Err, p.c(colorReset)))
	case res.Snap == nil:
		lines = append(lines, fmt.Sprintf("  %swaiting for first check%s", p.c(colorDim), p.c(colorReset)))
	case len(res.Issues) == 0:
		tasks, subtasks := res.Snap.Counts()
		lines = append(lines, fmt.Sprintf("  %s✓ %d tasks, %d subtasks, no dependency issues%s",
			p.c(colorGreen), tasks, subtasks, p.c(colorReset)))
	default:
		for _, is := range res.Issues {
			color := colorRed
			if is.Kind == task.IssueSelf {
				color = colorYellow
			}
			lines = append(lines, fmt.Sprintf("  %s%-10s %-8s %s%s",
				p.c(color), string(is.Kind), is.Owner.String(), is.Message, p.c(colorReset)))
		}
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("  %s%d issues%s", p.c(colorRed), len(res.Issues), p.c(colorReset)))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("  %sctrl+c to quit%s", p.c(colorDim), p.c(colorReset)))
	return lines
}

func (p *Printer) c(code string) string {
	if !p.color {
		return ""
	}
	return code
}
