package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// TextReporter writes human-readable output to a writer.
type TextReporter struct {
	w     io.Writer
	color bool
}

// NewTextReporter creates a text reporter.
// If w is nil, defaults to os.Stdout.
// color enables ANSI codes.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color}
}

func (r *TextReporter) c(code string) string {
	if !r.color {
		return ""
	}
	return code
}

// PrintIssues writes validation findings grouped by kind, worst first, then
// a one-line verdict.
func (r *TextReporter) PrintIssues(snap *task.Snapshot, issues []task.Issue) {
	tasks, subtasks := snap.Counts()
	if len(issues) == 0 {
		fmt.Fprintf(r.w, "%svalid:%s %d tasks, %d subtasks, no dependency issues\n",
			r.c(colorGreen), r.c(colorReset), tasks, subtasks)
		return
	}

	byKind := make(map[task.IssueKind][]task.Issue)
	for _, is := range issues {
		byKind[is.Kind] = append(byKind[is.Kind], is)
	}

	sections := []struct {
		kind  task.IssueKind
		label string
		color string
	}{
		{task.IssueMissing, "MISSING", colorRed},
		{task.IssueCircular, "CIRCULAR", colorRed},
		{task.IssueSelf, "SELF", colorYellow},
	}
	for _, sec := range sections {
		items := byKind[sec.kind]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(r.w, "%s%s  [%d/%d]%s\n",
			r.c(sec.color), sec.label, len(items), len(issues), r.c(colorReset))
		for _, is := range items {
			fmt.Fprintf(r.w, "  %-8s %s\n", is.Owner.String(), is.Message)
		}
		fmt.Fprintln(r.w)
	}
	fmt.Fprintf(r.w, "%sinvalid:%s %d issues across %d tasks, %d subtasks\n",
		r.c(colorRed), r.c(colorReset), len(issues), tasks, subtasks)
}

// PrintFixResult writes repair counts, the rewritten dependency lists, and
// any warnings about cycles left in place.
func (r *TextReporter) PrintFixResult(res *task.FixResult, dryRun bool) {
	st := res.Stats
	if st.Total() == 0 && len(res.Warnings) == 0 {
		fmt.Fprintf(r.w, "%sclean:%s no dependency repairs needed\n",
			r.c(colorGreen), r.c(colorReset))
		return
	}

	rows := []struct {
		n     int
		label string
	}{
		{st.DuplicatesRemoved, "duplicate references removed"},
		{st.MissingRemoved, "missing targets removed"},
		{st.SelfRemoved, "self references removed"},
		{st.CycleEdgesRemoved, "cycle edges removed"},
		{st.ListsCleared, "dependency lists cleared"},
	}
	for _, row := range rows {
		if row.n == 0 {
			continue
		}
		fmt.Fprintf(r.w, "  %s%4d%s %s\n", r.c(colorGreen), row.n, r.c(colorReset), row.label)
	}
	for _, ch := range res.Changes {
		fmt.Fprintf(r.w, "  %s%-8s%s → %s\n",
			r.c(colorDim), ch.Owner.String(), r.c(colorReset), refList(ch.Dependencies))
	}
	for _, msg := range res.Warnings {
		fmt.Fprintf(r.w, "  %swarning:%s %s\n", r.c(colorYellow), r.c(colorReset), msg)
	}
	switch {
	case dryRun:
		fmt.Fprintf(r.w, "%sdry-run:%s %d repairs found, nothing written\n",
			r.c(colorYellow), r.c(colorReset), st.Total())
	case st.Total() > 0:
		fmt.Fprintf(r.w, "fixed: %d repairs applied\n", st.Total())
	}
}

// PrintBulkResult writes one line per attempted pair and a summary.
func (r *TextReporter) PrintBulkResult(res *task.BulkResult, dryRun bool) {
	for _, op := range res.Operations {
		switch op.Outcome {
		case task.OutcomeApplied:
			fmt.Fprintf(r.w, "  %s✓%s %s → %s\n",
				r.c(colorGreen), r.c(colorReset), op.Task, op.Dependency)
		case task.OutcomeSkipped:
			fmt.Fprintf(r.w, "  %s-%s %s → %s  %s(%s)%s\n",
				r.c(colorDim), r.c(colorReset), op.Task, op.Dependency,
				r.c(colorDim), op.Note, r.c(colorReset))
		case task.OutcomeError:
			fmt.Fprintf(r.w, "  %s✗%s %s → %s  %s\n",
				r.c(colorRed), r.c(colorReset), op.Task, op.Dependency, op.Note)
		}
	}
	sum := res.Summary
	fmt.Fprintf(r.w, "\nvalid: %d  performed: %d  errors: %d",
		sum.ValidOperations, sum.OperationsPerformed, sum.Errors)
	if dryRun {
		fmt.Fprintf(r.w, "  %s(dry-run)%s", r.c(colorYellow), r.c(colorReset))
	}
	fmt.Fprintln(r.w)
}

// PrintNext writes the picked task, or a note when nothing is ready.
func (r *TextReporter) PrintNext(t *task.Task) {
	if t == nil {
		fmt.Fprintf(r.w, "%snothing ready:%s every open task waits on incomplete dependencies\n",
			r.c(colorYellow), r.c(colorReset))
		return
	}
	fmt.Fprintf(r.w, "%snext:%s %d — %s\n", r.c(colorGreen), r.c(colorReset), t.ID, t.Title)
	fmt.Fprintf(r.w, "  priority:     %s\n", t.Priority)
	fmt.Fprintf(r.w, "  dependencies: %s\n", refList(t.Dependencies))
	if len(t.Subtasks) > 0 {
		fmt.Fprintf(r.w, "  subtasks:     %d\n", len(t.Subtasks))
	}
}

// ListFilter narrows PrintList output. Zero value lists everything.
type ListFilter struct {
	Status      task.Status
	BlockedOnly bool
}

// PrintList writes every task grouped into readiness sections. Blocked rows
// name the dependencies still waited on.
func (r *TextReporter) PrintList(snap *task.Snapshot, filter ListFilter) {
	completed := task.CompletedRefs(snap)

	type row struct {
		t       *task.Task
		waiting []task.Ref
	}
	var inProgress, ready, blocked, done, onHold []row

	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		var waiting []task.Ref
		for _, dep := range t.Dependencies {
			if _, ok := completed[dep]; !ok {
				waiting = append(waiting, dep)
			}
		}
		rw := row{t: t, waiting: waiting}
		switch {
		case t.Status == task.StatusInProgress:
			inProgress = append(inProgress, rw)
		case t.Status.Complete():
			done = append(done, rw)
		case t.Status == task.StatusBlocked || t.Status == task.StatusDeferred:
			onHold = append(onHold, rw)
		case len(waiting) > 0:
			blocked = append(blocked, rw)
		default:
			ready = append(ready, rw)
		}
	}

	printRows := func(label, color string, rows []row, showWaiting bool) {
		if len(rows) == 0 {
			return
		}
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].t.ID < rows[b].t.ID })
		fmt.Fprintf(r.w, "%s%s  [%d]%s\n", r.c(color), label, len(rows), r.c(colorReset))
		for _, rw := range rows {
			extra := ""
			if showWaiting && len(rw.waiting) > 0 {
				extra = fmt.Sprintf("  %s(waiting: %s)%s", r.c(colorDim), refList(rw.waiting), r.c(colorReset))
			}
			fmt.Fprintf(r.w, "  %-4d %-40s %s%s\n", rw.t.ID, rw.t.Title, rw.t.Priority, extra)
		}
		fmt.Fprintln(r.w)
	}

	if filter.BlockedOnly {
		if len(blocked) == 0 {
			fmt.Fprintf(r.w, "%sclear:%s no task is blocked on incomplete dependencies\n",
				r.c(colorGreen), r.c(colorReset))
			return
		}
		printRows("BLOCKED", colorRed, blocked, true)
		return
	}

	printRows("IN PROGRESS", colorCyan, inProgress, false)
	printRows("READY", colorGreen, ready, false)
	printRows("BLOCKED", colorRed, blocked, true)
	printRows("ON HOLD", colorYellow, onHold, true)
	printRows("DONE", colorDim, done, false)

	tasks, subtasks := snap.Counts()
	fmt.Fprintf(r.w, "%d tasks, %d subtasks\n", tasks, subtasks)
}

func refList(refs []task.Ref) string {
	if len(refs) == 0 {
		return "(none)"
	}
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = ref.String()
	}
	return strings.Join(parts, ", ")
}
