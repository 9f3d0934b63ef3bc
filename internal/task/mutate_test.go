package task

import (
	"errors"
	"testing"
)

func mutateSnap() *Snapshot {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Status: StatusDone},
		{ID: 2, Dependencies: []Ref{{ID: 1}}},
		{ID: 3, Dependencies: []Ref{{ID: 2}}, Subtasks: []Subtask{
			{ID: 1},
			{ID: 2, Dependencies: []Ref{{ID: 1}}},
		}},
	}}
	s.Normalize()
	return s
}

func TestAddDependency_AppendsSorted(t *testing.T) {
	s := mutateSnap()

	updated, err := AddDependency(s, Ref{ID: 3}, Ref{ID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Ref{{ID: 1}, {ID: 2}}
	if len(updated) != len(want) {
		t.Fatalf("got %d deps, want %d", len(updated), len(want))
	}
	for i := range want {
		if updated[i] != want[i] {
			t.Errorf("dep %d = %v, want %v", i, updated[i], want[i])
		}
	}

	// the snapshot itself stays untouched until the caller commits
	if got := s.Task(3).Dependencies; len(got) != 1 {
		t.Errorf("snapshot mutated in place: %v", got)
	}
}

func TestAddDependency_SubtaskSortsAfterTasks(t *testing.T) {
	s := mutateSnap()

	updated, err := AddDependency(s, Ref{ID: 3}, Ref{ID: 3, Sub: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Ref{{ID: 2}, {ID: 3, Sub: 1}}
	for i := range want {
		if updated[i] != want[i] {
			t.Errorf("dep %d = %v, want %v", i, updated[i], want[i])
		}
	}
}

func TestAddDependency_OwnerMissing(t *testing.T) {
	_, err := AddDependency(mutateSnap(), Ref{ID: 9}, Ref{ID: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddDependency_TargetMissing(t *testing.T) {
	_, err := AddDependency(mutateSnap(), Ref{ID: 1}, Ref{ID: 9})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddDependency_Duplicate(t *testing.T) {
	_, err := AddDependency(mutateSnap(), Ref{ID: 2}, Ref{ID: 1})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAddDependency_Self(t *testing.T) {
	_, err := AddDependency(mutateSnap(), Ref{ID: 1}, Ref{ID: 1})
	if !errors.Is(err, ErrSelfDependency) {
		t.Fatalf("expected ErrSelfDependency, got %v", err)
	}
}

func TestAddDependency_TransitiveCycle(t *testing.T) {
	// 3 -> 2 -> 1 already holds, so 1 -> 3 closes a loop
	_, err := AddDependency(mutateSnap(), Ref{ID: 1}, Ref{ID: 3})
	if !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("expected ErrCircularDependency, got %v", err)
	}
}

func TestAddDependency_SubtaskCycle(t *testing.T) {
	// 3.2 -> 3.1 already holds
	_, err := AddDependency(mutateSnap(), Ref{ID: 3, Sub: 1}, Ref{ID: 3, Sub: 2})
	if !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("expected ErrCircularDependency, got %v", err)
	}
}

func TestRemoveDependency(t *testing.T) {
	s := mutateSnap()

	updated, removed, err := RemoveDependency(s, Ref{ID: 2}, Ref{ID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !removed {
		t.Error("expected removal")
	}
	if len(updated) != 0 {
		t.Errorf("updated = %v, want empty", updated)
	}
	// no in-place mutation
	if got := s.Task(2).Dependencies; len(got) != 1 {
		t.Errorf("snapshot mutated in place: %v", got)
	}
}

func TestRemoveDependency_AbsentIsNoOp(t *testing.T) {
	updated, removed, err := RemoveDependency(mutateSnap(), Ref{ID: 2}, Ref{ID: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Error("expected no removal")
	}
	if len(updated) != 1 {
		t.Errorf("updated = %v, want original list", updated)
	}
}

func TestRemoveDependency_OwnerMissing(t *testing.T) {
	_, _, err := RemoveDependency(mutateSnap(), Ref{ID: 9}, Ref{ID: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSortRefs(t *testing.T) {
	refs := []Ref{{ID: 2, Sub: 1}, {ID: 2}, {ID: 1, Sub: 2}, {ID: 1}}
	SortRefs(refs)

	want := []Ref{{ID: 1}, {ID: 2}, {ID: 1, Sub: 2}, {ID: 2, Sub: 1}}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("refs[%d] = %v, want %v", i, refs[i], want[i])
		}
	}
}
