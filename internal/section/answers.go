package section

// AnswerStore maps item id to the selected option (1-based).
// Writing an id again overwrites the previous answer.
type AnswerStore struct {
	m map[string]int
}

// NewAnswerStore returns an empty store.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{m: make(map[string]int)}
}

// Set records option for itemID.
func (a *AnswerStore) Set(itemID string, option int) {
	a.m[itemID] = option
}

// Get returns the selected option, or 0 and false.
func (a *AnswerStore) Get(itemID string) (int, bool) {
	v, ok := a.m[itemID]
	return v, ok
}

// Has reports whether itemID is answered.
func (a *AnswerStore) Has(itemID string) bool {
	_, ok := a.m[itemID]
	return ok
}

// Len returns the number of answered items.
func (a *AnswerStore) Len() int {
	return len(a.m)
}

// Snapshot returns a copy of the answers.
func (a *AnswerStore) Snapshot() map[string]int {
	out := make(map[string]int, len(a.m))
	for k, v := range a.m {
		out[k] = v
	}
	return out
}
