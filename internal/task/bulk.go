package task

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome classifies what happened to one (task, dependency) pair during a
// bulk operation.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skippedNoOp"
	OutcomeError   Outcome = "error"
)

// BulkOp records the result of one pair.
type BulkOp struct {
	Task       Ref     `json:"task"`
	Dependency Ref     `json:"dependency"`
	Outcome    Outcome `json:"outcome"`
	Note       string  `json:"note,omitempty"`
}

// BulkSummary totals a bulk run. ValidOperations counts pairs that passed
// validation; OperationsPerformed matches it except on dry runs, where it
// stays zero because nothing was committed.
type BulkSummary struct {
	ValidOperations     int `json:"validOperations"`
	OperationsPerformed int `json:"operationsPerformed"`
	Errors              int `json:"errors"`
}

// BulkResult is the full outcome of a bulk add or remove.
type BulkResult struct {
	Summary    BulkSummary `json:"summary"`
	Operations []BulkOp    `json:"operations"`

	// Snapshot holds the mutated working copy; Changed lists the owners
	// whose dependency lists differ. Both are for persistence, not output.
	Snapshot *Snapshot `json:"-"`
	Changed  []Ref     `json:"-"`
}

// ParseRange expands an id range spec into refs. The grammar is a comma
// list of terms, each either a single id ("4", "4.2") or an inclusive
// ascending span ("2-5", "3.1-3.4"). Spans must stay within one kind: a
// dotted span cannot leave its parent, and mixing plain and dotted
// endpoints is malformed.
func ParseRange(spec string) ([]Ref, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty range: %w", ErrMalformedRange)
	}
	var refs []Ref
	for _, term := range strings.Split(spec, ",") {
		term = strings.TrimSpace(term)
		lo, hi, isSpan := splitSpan(term)
		if !isSpan {
			ref, err := ParseRef(term)
			if err != nil {
				return nil, fmt.Errorf("term %q: %w", term, ErrMalformedRange)
			}
			refs = append(refs, ref)
			continue
		}
		first, err := ParseRef(lo)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term, ErrMalformedRange)
		}
		last, err := ParseRef(hi)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term, ErrMalformedRange)
		}
		switch {
		case !first.IsSubtask() && !last.IsSubtask():
			if last.ID < first.ID {
				return nil, fmt.Errorf("term %q: descending span: %w", term, ErrMalformedRange)
			}
			for id := first.ID; id <= last.ID; id++ {
				refs = append(refs, Ref{ID: id})
			}
		case first.IsSubtask() && last.IsSubtask() && first.ID == last.ID:
			if last.Sub < first.Sub {
				return nil, fmt.Errorf("term %q: descending span: %w", term, ErrMalformedRange)
			}
			for sub := first.Sub; sub <= last.Sub; sub++ {
				refs = append(refs, Ref{ID: first.ID, Sub: sub})
			}
		default:
			return nil, fmt.Errorf("term %q spans mixed targets: %w", term, ErrMalformedRange)
		}
	}
	return refs, nil
}

// splitSpan splits "a-b" into endpoints. A leading dash is not a span,
// so negative single ids still reach ParseRef and fail there.
func splitSpan(term string) (lo, hi string, ok bool) {
	i := strings.Index(term, "-")
	if i <= 0 || i == len(term)-1 {
		return "", "", false
	}
	return term[:i], term[i+1:], true
}

// BulkAdd applies every (task, dependency) pair from the cross product of
// the two range specs. Pairs apply sequentially against a working copy, so
// a later pair sees edges added by earlier ones. One pair failing never
// aborts the rest. dryRun validates and reports without marking anything
// performed; the caller simply does not persist the snapshot.
func BulkAdd(s *Snapshot, taskSpec, depSpec string, dryRun bool) (*BulkResult, error) {
	return bulkApply(s, taskSpec, depSpec, dryRun, applyAdd)
}

// BulkRemove is the removal counterpart of BulkAdd. Pairs whose dependency
// is already absent are skipped as no-ops.
func BulkRemove(s *Snapshot, taskSpec, depSpec string, dryRun bool) (*BulkResult, error) {
	return bulkApply(s, taskSpec, depSpec, dryRun, applyRemove)
}

type bulkFn func(work *Snapshot, owner, target Ref) (BulkOp, bool)

func bulkApply(s *Snapshot, taskSpec, depSpec string, dryRun bool, apply bulkFn) (*BulkResult, error) {
	owners, err := ParseRange(taskSpec)
	if err != nil {
		return nil, fmt.Errorf("task range %q: %w", taskSpec, err)
	}
	targets, err := ParseRange(depSpec)
	if err != nil {
		return nil, fmt.Errorf("dependency range %q: %w", depSpec, err)
	}

	work := s.Clone()
	res := &BulkResult{Snapshot: work}
	changed := make(map[Ref]struct{})

	for _, owner := range owners {
		for _, target := range targets {
			op, mutated := apply(work, owner, target)
			res.Operations = append(res.Operations, op)
			switch op.Outcome {
			case OutcomeApplied:
				res.Summary.ValidOperations++
			case OutcomeError:
				res.Summary.Errors++
			}
			if mutated {
				changed[owner] = struct{}{}
			}
		}
	}

	for ref := range changed {
		res.Changed = append(res.Changed, ref)
	}
	SortRefs(res.Changed)

	if !dryRun {
		res.Summary.OperationsPerformed = res.Summary.ValidOperations
	}
	return res, nil
}

func applyAdd(work *Snapshot, owner, target Ref) (BulkOp, bool) {
	op := BulkOp{Task: owner, Dependency: target}
	updated, err := AddDependency(work, owner, target)
	switch {
	case err == nil:
		work.SetDependencies(owner, updated)
		op.Outcome = OutcomeApplied
		return op, true
	case errors.Is(err, ErrAlreadyExists):
		op.Outcome = OutcomeSkipped
		op.Note = fmt.Sprintf("task %s already depends on %s", owner, target)
		return op, false
	default:
		op.Outcome = OutcomeError
		op.Note = err.Error()
		return op, false
	}
}

func applyRemove(work *Snapshot, owner, target Ref) (BulkOp, bool) {
	op := BulkOp{Task: owner, Dependency: target}
	updated, removed, err := RemoveDependency(work, owner, target)
	switch {
	case err != nil:
		op.Outcome = OutcomeError
		op.Note = err.Error()
		return op, false
	case !removed:
		op.Outcome = OutcomeSkipped
		op.Note = fmt.Sprintf("task %s does not depend on %s", owner, target)
		return op, false
	default:
		work.SetDependencies(owner, updated)
		op.Outcome = OutcomeApplied
		return op, true
	}
}
