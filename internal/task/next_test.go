package task

import "testing"

func TestFindNext_ChainReadiness(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Status: StatusDone},
		{ID: 2, Dependencies: []Ref{{ID: 1}}},
		{ID: 3, Dependencies: []Ref{{ID: 2}}},
	}}
	s.Normalize()

	got := FindNext(s)
	if got == nil || got.ID != 2 {
		t.Fatalf("FindNext = %v, want task 2", got)
	}
}

func TestFindNext_NilWhenNothingEligible(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Status: StatusDone},
		{ID: 2, Status: StatusBlocked},
		{ID: 3, Status: StatusDeferred},
		{ID: 4, Dependencies: []Ref{{ID: 9}}},
	}}
	s.Normalize()

	if got := FindNext(s); got != nil {
		t.Fatalf("FindNext = %v, want nil", got)
	}
}

func TestFindNext_PriorityWins(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Priority: PriorityLow},
		{ID: 2, Priority: PriorityHigh},
		{ID: 3},
	}}
	s.Normalize()

	got := FindNext(s)
	if got == nil || got.ID != 2 {
		t.Fatalf("FindNext = %v, want high-priority task 2", got)
	}
}

func TestFindNext_FewerDepsBreakTie(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Status: StatusDone},
		{ID: 2, Status: StatusDone},
		{ID: 3, Dependencies: []Ref{{ID: 1}, {ID: 2}}},
		{ID: 4, Dependencies: []Ref{{ID: 1}}},
	}}
	s.Normalize()

	got := FindNext(s)
	if got == nil || got.ID != 4 {
		t.Fatalf("FindNext = %v, want task 4 with fewer dependencies", got)
	}
}

func TestFindNext_LowerIDBreaksTie(t *testing.T) {
	s := &Snapshot{Tasks: []Task{{ID: 7}, {ID: 2}}}
	s.Normalize()

	got := FindNext(s)
	if got == nil || got.ID != 2 {
		t.Fatalf("FindNext = %v, want task 2", got)
	}
}

func TestFindNext_SubtaskDependencyGates(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Subtasks: []Subtask{{ID: 1}}},
		{ID: 2, Priority: PriorityHigh, Dependencies: []Ref{{ID: 1, Sub: 1}}},
	}}
	s.Normalize()

	// subtask 1.1 still pending, so only task 1 is ready
	got := FindNext(s)
	if got == nil || got.ID != 1 {
		t.Fatalf("FindNext = %v, want task 1", got)
	}

	s.Tasks[0].Subtasks[0].Status = StatusDone
	got = FindNext(s)
	if got == nil || got.ID != 2 {
		t.Fatalf("FindNext = %v, want unblocked task 2", got)
	}
}

func TestFindNext_CompletedSynonym(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Status: StatusCompleted},
		{ID: 2, Dependencies: []Ref{{ID: 1}}},
	}}
	s.Normalize()

	got := FindNext(s)
	if got == nil || got.ID != 2 {
		t.Fatalf("FindNext = %v, want task 2", got)
	}
}

func TestFindNext_InProgressStaysEligible(t *testing.T) {
	s := &Snapshot{Tasks: []Task{{ID: 1, Status: StatusInProgress}}}
	s.Normalize()

	got := FindNext(s)
	if got == nil || got.ID != 1 {
		t.Fatalf("FindNext = %v, want task 1", got)
	}
}
