package task

import "sort"

// CompletedRefs returns every task and subtask reference whose status
// counts as complete. Readiness checks treat membership here as the only
// way a dependency is satisfied; a missing target is indistinguishable
// from an unfinished one.
func CompletedRefs(s *Snapshot) map[Ref]struct{} {
	completed := make(map[Ref]struct{})
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if t.Status.Complete() {
			completed[t.Ref()] = struct{}{}
		}
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			if st.Status.Complete() {
				completed[st.Ref()] = struct{}{}
			}
		}
	}
	return completed
}

// FindNext picks the task to work on next: the highest-priority pending or
// in-progress task whose dependencies are all complete. Ties break toward
// fewer dependencies, then the lower id. Returns nil when nothing is
// eligible.
//
// Subtasks gate their parent only through explicit dependency edges; a task
// with unfinished subtasks but satisfied dependencies is still eligible.
func FindNext(s *Snapshot) *Task {
	completed := CompletedRefs(s)

	var eligible []*Task
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if t.Status != StatusPending && t.Status != StatusInProgress {
			continue
		}
		ready := true
		for _, dep := range t.Dependencies {
			if _, done := completed[dep]; !done {
				ready = false
				break
			}
		}
		if ready {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if len(a.Dependencies) != len(b.Dependencies) {
			return len(a.Dependencies) < len(b.Dependencies)
		}
		return a.ID < b.ID
	})
	return eligible[0]
}
