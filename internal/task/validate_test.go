package task

import "testing"

func TestValidateAll_Clean(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Status: StatusDone},
		{ID: 2, Dependencies: []Ref{{ID: 1}}},
		{ID: 3, Dependencies: []Ref{{ID: 1}, {ID: 2}}, Subtasks: []Subtask{
			{ID: 1},
			{ID: 2, Dependencies: []Ref{{ID: 1}}},
		}},
	}}
	s.Normalize()

	if issues := ValidateAll(s); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidateAll_SelfDependency(t *testing.T) {
	s := &Snapshot{Tasks: []Task{{ID: 5, Dependencies: []Ref{{ID: 5}}}}}
	s.Normalize()

	issues := ValidateAll(s)
	selfCount := 0
	for _, is := range issues {
		if is.Kind != IssueSelf {
			continue
		}
		selfCount++
		if is.Owner != (Ref{ID: 5}) || is.Dependency != (Ref{ID: 5}) {
			t.Errorf("self issue on %v -> %v, want 5 -> 5", is.Owner, is.Dependency)
		}
	}
	if selfCount != 1 {
		t.Fatalf("expected exactly one self issue, got %d: %v", selfCount, issues)
	}
}

func TestValidateAll_MissingTargets(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Dependencies: []Ref{{ID: 9}, {ID: 2, Sub: 4}}},
		{ID: 2, Subtasks: []Subtask{{ID: 1}}},
	}}
	s.Normalize()

	issues := ValidateAll(s)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %v", len(issues), issues)
	}
	for _, is := range issues {
		if is.Kind != IssueMissing {
			t.Errorf("kind = %q, want %q", is.Kind, IssueMissing)
		}
		if is.Owner != (Ref{ID: 1}) {
			t.Errorf("owner = %v, want 1", is.Owner)
		}
	}
}

func TestValidateAll_CyclePair(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Dependencies: []Ref{{ID: 2}}},
		{ID: 2, Dependencies: []Ref{{ID: 1}}},
	}}
	s.Normalize()

	issues := ValidateAll(s)
	circular := 0
	for _, is := range issues {
		if is.Kind != IssueCircular {
			t.Errorf("unexpected %s issue: %s", is.Kind, is.Message)
			continue
		}
		circular++
	}
	if circular != 2 {
		t.Fatalf("expected a circular issue per task on the loop, got %d", circular)
	}
}

func TestValidateAll_DiamondIsAcyclic(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1},
		{ID: 2, Dependencies: []Ref{{ID: 1}}},
		{ID: 3, Dependencies: []Ref{{ID: 1}}},
		{ID: 4, Dependencies: []Ref{{ID: 2}, {ID: 3}}},
	}}
	s.Normalize()

	if issues := ValidateAll(s); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidateAll_SubtaskCycle(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 1, Subtasks: []Subtask{
			{ID: 1, Dependencies: []Ref{{ID: 2}}},
			{ID: 2, Dependencies: []Ref{{ID: 1}}},
		}},
	}}
	s.Normalize()

	issues := ValidateAll(s)
	circular := 0
	for _, is := range issues {
		if is.Kind == IssueCircular {
			circular++
		}
	}
	if circular != 2 {
		t.Fatalf("expected 2 circular issues, got %d: %v", circular, issues)
	}
	if len(issues) != circular {
		t.Errorf("expected only circular issues, got %v", issues)
	}
}

func TestDetectCycle_WouldCloseLoop(t *testing.T) {
	s := &Snapshot{Tasks: []Task{
		{ID: 2, Dependencies: []Ref{{ID: 4}}},
		{ID: 3},
		{ID: 4, Dependencies: []Ref{{ID: 3}}},
	}}
	s.Normalize()

	// 3 -> 2 would close 2 -> 4 -> 3 -> 2
	if !DetectCycle(s, Ref{ID: 2}, []Ref{{ID: 3}}) {
		t.Error("expected cycle when 3 gains a dependency on 2")
	}
	// the forward direction adds no loop
	if DetectCycle(s, Ref{ID: 3}, []Ref{{ID: 2}}) {
		t.Error("2 -> 3 must not report a cycle")
	}
}

func TestDetectCycle_DanglingRefTerminates(t *testing.T) {
	s := &Snapshot{Tasks: []Task{{ID: 1, Dependencies: []Ref{{ID: 9}}}}}
	s.Normalize()

	if DetectCycle(s, Ref{ID: 1}, nil) {
		t.Error("dangling dependency must not count as a cycle")
	}
}
