package task

import (
	"fmt"
	"sort"
)

// AddDependency validates and appends target to owner's dependency list,
// returning the updated list. Checks run in a fixed order: owner resolves,
// target resolves, not already present, not a self reference, and the new
// edge closes no cycle. The snapshot itself is not modified; callers decide
// whether to commit the returned list.
//
// A duplicate add returns ErrAlreadyExists; callers typically treat that as
// success since the desired state already holds.
func AddDependency(s *Snapshot, owner, target Ref) ([]Ref, error) {
	ix := NewIndex(s)
	if !ix.Exists(owner) {
		return nil, fmt.Errorf("task %s: %w", owner, ErrNotFound)
	}
	if !ix.Exists(target) {
		return nil, fmt.Errorf("dependency target %s: %w", target, ErrNotFound)
	}
	current := ix.Dependencies(owner)
	for _, dep := range current {
		if dep == target {
			return nil, fmt.Errorf("task %s already depends on %s: %w", owner, target, ErrAlreadyExists)
		}
	}
	if IsSelfDependency(owner, target) {
		return nil, fmt.Errorf("task %s: %w", owner, ErrSelfDependency)
	}
	if cycleFrom(ix, target, []Ref{owner}) {
		return nil, fmt.Errorf("adding %s to task %s: %w", target, owner, ErrCircularDependency)
	}
	updated := make([]Ref, 0, len(current)+1)
	updated = append(updated, current...)
	updated = append(updated, target)
	SortRefs(updated)
	return updated, nil
}

// RemoveDependency removes the first occurrence of target from owner's
// dependency list. A missing owner is an error; a missing target is not,
// removed just reports false so callers can phrase the no-op.
func RemoveDependency(s *Snapshot, owner, target Ref) (updated []Ref, removed bool, err error) {
	ix := NewIndex(s)
	if !ix.Exists(owner) {
		return nil, false, fmt.Errorf("task %s: %w", owner, ErrNotFound)
	}
	current := ix.Dependencies(owner)
	updated = make([]Ref, 0, len(current))
	for _, dep := range current {
		if !removed && dep == target {
			removed = true
			continue
		}
		updated = append(updated, dep)
	}
	return updated, removed, nil
}

// SortRefs orders a dependency list canonically: plain task refs ascending
// by id, then subtask refs by (parent, sub).
func SortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
}
