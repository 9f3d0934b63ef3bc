package task

import (
	"errors"
	"testing"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    []Ref
		wantErr bool
	}{
		{in: "3", want: []Ref{{ID: 3}}},
		{in: "1,3,5", want: []Ref{{ID: 1}, {ID: 3}, {ID: 5}}},
		{in: "2-4", want: []Ref{{ID: 2}, {ID: 3}, {ID: 4}}},
		{in: "1, 3-4 ,7", want: []Ref{{ID: 1}, {ID: 3}, {ID: 4}, {ID: 7}}},
		{in: "4.2", want: []Ref{{ID: 4, Sub: 2}}},
		{in: "3.1-3.3", want: []Ref{{ID: 3, Sub: 1}, {ID: 3, Sub: 2}, {ID: 3, Sub: 3}}},
		{in: "", wantErr: true},
		{in: "x", wantErr: true},
		{in: "5-3", wantErr: true},
		{in: "3.3-3.1", wantErr: true},
		{in: "1-2.3", wantErr: true},
		{in: "3.1-4.2", wantErr: true},
		{in: "1-", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedRange) {
				t.Errorf("ParseRange(%q): expected ErrMalformedRange, got %v (%v)", tt.in, err, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRange(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseRange(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("ParseRange(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestBulkAdd_MissingTargetPerPair(t *testing.T) {
	s := &Snapshot{Tasks: []Task{{ID: 1}, {ID: 2}}}
	s.Normalize()

	res, err := BulkAdd(s, "1,2", "9", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.Errors != 2 {
		t.Errorf("Errors = %d, want 2", res.Summary.Errors)
	}
	if res.Summary.ValidOperations != 0 || res.Summary.OperationsPerformed != 0 {
		t.Errorf("summary = %+v, want nothing performed", res.Summary)
	}
	if len(res.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(res.Operations))
	}
	for _, op := range res.Operations {
		if op.Outcome != OutcomeError {
			t.Errorf("pair %v -> %v outcome = %q, want error", op.Task, op.Dependency, op.Outcome)
		}
	}
}

func TestBulkAdd_LaterPairsSeeEarlierEdges(t *testing.T) {
	s := &Snapshot{Tasks: []Task{{ID: 1}, {ID: 2}}}
	s.Normalize()

	// pairs run in order: (1,1) self, (1,2) applied, (2,1) now circular, (2,2) self
	res, err := BulkAdd(s, "1,2", "1,2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.ValidOperations != 1 {
		t.Errorf("ValidOperations = %d, want 1", res.Summary.ValidOperations)
	}
	if res.Summary.Errors != 3 {
		t.Errorf("Errors = %d, want 3", res.Summary.Errors)
	}
	if res.Operations[2].Outcome != OutcomeError {
		t.Errorf("pair (2,1) outcome = %q, want error from the new edge", res.Operations[2].Outcome)
	}
	if len(res.Changed) != 1 || res.Changed[0] != (Ref{ID: 1}) {
		t.Errorf("Changed = %v, want [1]", res.Changed)
	}
}

func TestBulkAdd_DryRunPerformsNothing(t *testing.T) {
	s := &Snapshot{Tasks: []Task{{ID: 1}, {ID: 2}}}
	s.Normalize()

	res, err := BulkAdd(s, "1", "2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.ValidOperations != 1 {
		t.Errorf("ValidOperations = %d, want 1", res.Summary.ValidOperations)
	}
	if res.Summary.OperationsPerformed != 0 {
		t.Errorf("OperationsPerformed = %d, want 0 on dry run", res.Summary.OperationsPerformed)
	}
	if len(s.Task(1).Dependencies) != 0 {
		t.Errorf("input snapshot mutated: %v", s.Task(1).Dependencies)
	}
	// the working copy still carries the would-be state
	if got := res.Snapshot.Task(1).Dependencies; len(got) != 1 {
		t.Errorf("working copy deps = %v, want [2]", got)
	}
}

func TestBulkAdd_SkipsDuplicates(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Dependencies: []Ref{{ID: 2}}},
		{ID: 2},
	}}
	s.Normalize()

	res, err := BulkAdd(s, "1", "2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.ValidOperations != 0 || res.Summary.Errors != 0 {
		t.Errorf("summary = %+v, want all skips", res.Summary)
	}
	if res.Operations[0].Outcome != OutcomeSkipped {
		t.Errorf("outcome = %q, want skippedNoOp", res.Operations[0].Outcome)
	}
	if len(res.Changed) != 0 {
		t.Errorf("Changed = %v, want none", res.Changed)
	}
}

func TestBulkRemove(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Dependencies: []Ref{{ID: 2}, {ID: 3}}},
		{ID: 2},
		{ID: 3},
	}}
	s.Normalize()

	res, err := BulkRemove(s, "1", "2,9", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Operations[0].Outcome != OutcomeApplied {
		t.Errorf("pair (1,2) outcome = %q, want applied", res.Operations[0].Outcome)
	}
	if res.Operations[1].Outcome != OutcomeSkipped {
		t.Errorf("pair (1,9) outcome = %q, want skippedNoOp", res.Operations[1].Outcome)
	}
	if res.Summary.OperationsPerformed != 1 {
		t.Errorf("OperationsPerformed = %d, want 1", res.Summary.OperationsPerformed)
	}
	if got := res.Snapshot.Task(1).Dependencies; len(got) != 1 || got[0] != (Ref{ID: 3}) {
		t.Errorf("working copy deps = %v, want [3]", got)
	}
}

func TestBulkAdd_MalformedRange(t *testing.T) {
	s := &Snapshot{Tasks: []Task{{ID: 1}}}
	s.Normalize()

	if _, err := BulkAdd(s, "2-1", "1", false); !errors.Is(err, ErrMalformedRange) {
		t.Errorf("task range: expected ErrMalformedRange, got %v", err)
	}
	if _, err := BulkAdd(s, "1", "", false); !errors.Is(err, ErrMalformedRange) {
		t.Errorf("dependency range: expected ErrMalformedRange, got %v", err)
	}
}
