package task

import "fmt"

// FixStats counts repairs by category.
type FixStats struct {
	DuplicatesRemoved int `json:"duplicatesRemoved"`
	MissingRemoved    int `json:"missingRemoved"`
	SelfRemoved       int `json:"selfRemoved"`
	CycleEdgesRemoved int `json:"cycleEdgesRemoved"`
	ListsCleared      int `json:"listsCleared"`
}

// Total sums repairs across every category.
func (st FixStats) Total() int {
	return st.DuplicatesRemoved + st.MissingRemoved + st.SelfRemoved +
		st.CycleEdgesRemoved + st.ListsCleared
}

// FixResult holds the repaired snapshot plus an account of what changed.
type FixResult struct {
	Snapshot *Snapshot `json:"-"`
	Stats    FixStats  `json:"stats"`
	Changes  []Change  `json:"changes,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Fix repairs a snapshot's dependency lists on a working copy and reports
// what it did. Phases run in a fixed order so later ones see earlier
// repairs: duplicates collapse first (first occurrence wins), then refs to
// missing targets drop, then self references, then back edges among
// subtasks, and finally any parent whose subtasks all wait on something
// gets its first subtask's list cleared. Cycles through top-level tasks are
// warned about, not fixed.
//
// Running Fix on its own output yields an empty diff.
func Fix(s *Snapshot) *FixResult {
	work := s.Clone()
	res := &FixResult{Snapshot: work}

	res.Stats.DuplicatesRemoved = dedupRefs(work)
	res.Stats.MissingRemoved = pruneMissing(work)
	res.Stats.SelfRemoved = pruneSelf(work)
	res.Stats.CycleEdgesRemoved = breakSubtaskCycles(work)
	res.Warnings = taskCycleWarnings(work)
	res.Stats.ListsCleared = restoreUsability(work)

	res.Changes = DiffSnapshots(s, work)
	return res
}

// forEachList visits every dependency list, tasks before their subtasks,
// replacing each list with whatever visit returns.
func forEachList(s *Snapshot, visit func(owner Ref, deps []Ref) []Ref) {
	for i := range s.Tasks {
		t := &s.Tasks[i]
		t.Dependencies = visit(t.Ref(), t.Dependencies)
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			st.Dependencies = visit(st.Ref(), st.Dependencies)
		}
	}
}

func dedupRefs(s *Snapshot) int {
	removed := 0
	forEachList(s, func(_ Ref, deps []Ref) []Ref {
		seen := make(map[Ref]struct{}, len(deps))
		kept := deps[:0]
		for _, dep := range deps {
			if _, dup := seen[dep]; dup {
				removed++
				continue
			}
			seen[dep] = struct{}{}
			kept = append(kept, dep)
		}
		return kept
	})
	return removed
}

func pruneMissing(s *Snapshot) int {
	ix := NewIndex(s)
	removed := 0
	forEachList(s, func(_ Ref, deps []Ref) []Ref {
		kept := deps[:0]
		for _, dep := range deps {
			if !ix.Exists(dep) {
				removed++
				continue
			}
			kept = append(kept, dep)
		}
		return kept
	})
	return removed
}

func pruneSelf(s *Snapshot) int {
	removed := 0
	forEachList(s, func(owner Ref, deps []Ref) []Ref {
		kept := deps[:0]
		for _, dep := range deps {
			if IsSelfDependency(owner, dep) {
				removed++
				continue
			}
			kept = append(kept, dep)
		}
		return kept
	})
	return removed
}

// breakSubtaskCycles removes back edges among subtask-to-subtask
// dependencies until none remain. Edges through top-level tasks never
// participate here.
func breakSubtaskCycles(s *Snapshot) int {
	edges := make(map[Ref][]Ref)
	var order []Ref
	for i := range s.Tasks {
		for j := range s.Tasks[i].Subtasks {
			st := &s.Tasks[i].Subtasks[j]
			ref := st.Ref()
			order = append(order, ref)
			var subDeps []Ref
			for _, dep := range st.Dependencies {
				if dep.IsSubtask() {
					subDeps = append(subDeps, dep)
				}
			}
			edges[ref] = subDeps
		}
	}

	removed := 0
	for _, start := range order {
		for {
			src, dst, found := findBackEdge(start, edges)
			if !found {
				break
			}
			removeListDep(s, src, dst)
			edges[src] = withoutRef(edges[src], dst)
			removed++
		}
	}
	return removed
}

// findBackEdge walks depth-first from start and returns the first edge
// pointing back into the active path.
func findBackEdge(start Ref, edges map[Ref][]Ref) (src, dst Ref, found bool) {
	visited := make(map[Ref]bool)
	onStack := make(map[Ref]bool)

	var walk func(node Ref) bool
	walk = func(node Ref) bool {
		visited[node] = true
		onStack[node] = true
		for _, dep := range edges[node] {
			if onStack[dep] {
				src, dst, found = node, dep, true
				return true
			}
			if !visited[dep] && walk(dep) {
				return true
			}
		}
		onStack[node] = false
		return false
	}
	walk(start)
	return src, dst, found
}

func removeListDep(s *Snapshot, owner, target Ref) {
	deps, ok := s.Dependencies(owner)
	if !ok {
		return
	}
	s.SetDependencies(owner, withoutRef(deps, target))
}

// withoutRef returns refs minus the first occurrence of target.
func withoutRef(refs []Ref, target Ref) []Ref {
	kept := make([]Ref, 0, len(refs))
	skipped := false
	for _, ref := range refs {
		if !skipped && ref == target {
			skipped = true
			continue
		}
		kept = append(kept, ref)
	}
	return kept
}

func taskCycleWarnings(s *Snapshot) []string {
	ix := NewIndex(s)
	var warnings []string
	for i := range s.Tasks {
		ref := s.Tasks[i].Ref()
		if cycleFrom(ix, ref, nil) {
			warnings = append(warnings,
				fmt.Sprintf("task %s is part of a dependency cycle that was not auto-fixed", ref))
		}
	}
	return warnings
}

// restoreUsability keeps every populated subtask list startable: when no
// subtask of a parent has an empty dependency list, the first subtask's
// list is cleared.
func restoreUsability(s *Snapshot) int {
	cleared := 0
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if len(t.Subtasks) == 0 {
			continue
		}
		startable := false
		for j := range t.Subtasks {
			if len(t.Subtasks[j].Dependencies) == 0 {
				startable = true
				break
			}
		}
		if !startable {
			t.Subtasks[0].Dependencies = []Ref{}
			cleared++
		}
	}
	return cleared
}
