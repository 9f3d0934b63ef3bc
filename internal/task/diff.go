package task

// Change records one owner whose dependency list differs between two
// snapshots, along with the list it ended up with.
type Change struct {
	Owner        Ref   `json:"owner"`
	Dependencies []Ref `json:"dependencies"`
}

// DiffSnapshots compares dependency lists owner by owner, keyed on id
// rather than position, and returns one Change per list that differs.
// Order follows after's traversal. An owner new in after counts as changed
// only when its list is non-empty.
func DiffSnapshots(before, after *Snapshot) []Change {
	prev := NewIndex(before)
	var changes []Change

	record := func(owner Ref, deps []Ref) {
		if prev.Exists(owner) {
			if refsEqual(prev.Dependencies(owner), deps) {
				return
			}
		} else if len(deps) == 0 {
			return
		}
		changes = append(changes, Change{Owner: owner, Dependencies: deps})
	}

	for i := range after.Tasks {
		t := &after.Tasks[i]
		record(t.Ref(), t.Dependencies)
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			record(st.Ref(), st.Dependencies)
		}
	}
	return changes
}

// refsEqual compares element-wise; nil and empty are equal.
func refsEqual(a, b []Ref) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
