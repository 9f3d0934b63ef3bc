package task

import "fmt"

// IssueKind classifies a validation finding.
type IssueKind string

const (
	IssueSelf     IssueKind = "self"
	IssueMissing  IssueKind = "missing"
	IssueCircular IssueKind = "circular"
)

// Issue is a single validation finding against one owner. Self and missing
// issues also name the offending dependency; circular issues do not, since
// the cycle involves the whole chain rather than one edge.
type Issue struct {
	Owner      Ref       `json:"owner"`
	Dependency Ref       `json:"dependency,omitempty"`
	Kind       IssueKind `json:"kind"`
	Message    string    `json:"message"`
}

// IsSelfDependency reports whether a dependency points back at its owner.
func IsSelfDependency(owner, dep Ref) bool {
	return owner == dep
}

// DetectCycle reports whether following dependency edges from start revisits
// any id already on the chain. extra seeds the chain, so passing the
// would-be owner there answers "would adding owner -> start close a cycle"
// without mutating the snapshot.
func DetectCycle(s *Snapshot, start Ref, extra []Ref) bool {
	chain := make([]Ref, len(extra), len(extra)+8)
	copy(chain, extra)
	return cycleFrom(NewIndex(s), start, chain)
}

// cycleFrom walks depth-first from current. Each recursion copies the chain,
// so sibling branches never see each other's path. Membership is checked
// before existence: a dangling ref that closes the chain still counts as a
// cycle, while a dangling ref off the chain just terminates that branch.
func cycleFrom(ix *Index, current Ref, chain []Ref) bool {
	for _, seen := range chain {
		if seen == current {
			return true
		}
	}
	if !ix.Exists(current) {
		return false
	}
	next := make([]Ref, len(chain)+1)
	copy(next, chain)
	next[len(chain)] = current
	for _, dep := range ix.Dependencies(current) {
		if cycleFrom(ix, dep, next) {
			return true
		}
	}
	return false
}

// ValidateAll checks every task and subtask dependency list and returns all
// findings: self references, targets that do not resolve, and cycles. Each
// owner on a cycle gets its own circular issue, so a two-task loop reports
// twice. The snapshot is not modified.
func ValidateAll(s *Snapshot) []Issue {
	ix := NewIndex(s)
	var issues []Issue

	check := func(owner Ref, deps []Ref) {
		for _, dep := range deps {
			switch {
			case IsSelfDependency(owner, dep):
				issues = append(issues, Issue{
					Owner:      owner,
					Dependency: dep,
					Kind:       IssueSelf,
					Message:    fmt.Sprintf("task %s depends on itself", owner),
				})
			case !ix.Exists(dep):
				issues = append(issues, Issue{
					Owner:      owner,
					Dependency: dep,
					Kind:       IssueMissing,
					Message:    fmt.Sprintf("task %s depends on missing target %s", owner, dep),
				})
			}
		}
		if cycleFrom(ix, owner, nil) {
			issues = append(issues, Issue{
				Owner:   owner,
				Kind:    IssueCircular,
				Message: fmt.Sprintf("task %s is part of a dependency cycle", owner),
			})
		}
	}

	for i := range s.Tasks {
		t := &s.Tasks[i]
		check(t.Ref(), t.Dependencies)
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			check(st.Ref(), st.Dependencies)
		}
	}
	return issues
}
