package task

// Index provides O(1) reference lookups over a snapshot. Build it once per
// operation; it does not observe later snapshot mutations.
type Index struct {
	ids  map[Ref]struct{}
	deps map[Ref][]Ref
}

// NewIndex scans the snapshot and indexes every task and subtask id along
// with its dependency list.
func NewIndex(s *Snapshot) *Index {
	ix := &Index{
		ids:  make(map[Ref]struct{}, len(s.Tasks)),
		deps: make(map[Ref][]Ref, len(s.Tasks)),
	}
	for i := range s.Tasks {
		t := &s.Tasks[i]
		ix.ids[t.Ref()] = struct{}{}
		ix.deps[t.Ref()] = t.Dependencies
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			ix.ids[st.Ref()] = struct{}{}
			ix.deps[st.Ref()] = st.Dependencies
		}
	}
	return ix
}

// Exists reports whether ref resolves to a known task or subtask.
func (ix *Index) Exists(ref Ref) bool {
	_, ok := ix.ids[ref]
	return ok
}

// Dependencies returns the dependency list owned by ref, or nil for
// unknown refs.
func (ix *Index) Dependencies(ref Ref) []Ref {
	return ix.deps[ref]
}
