package history

// DiffPair is a commit and the reference it is diffed against. An empty
// Reference means the empty tree.
type DiffPair struct {
	Commit    CommitRecord
	Reference string
}

// ResolveReference returns the parent a commit is diffed against: its only
// parent, or the first parent of a merge. Root and shallow-boundary commits
// have no reference.
//
// Merges are always shown against their mainline parent, never against a
// merge base or as a combined diff.
func ResolveReference(c CommitRecord) (string, bool) {
	if c.Grafted || len(c.Parents) == 0 {
		return "", false
	}
	return c.Parents[0], true
}

// Pairs resolves every commit in the window, preserving window order.
func Pairs(w Window) []DiffPair {
	pairs := make([]DiffPair, len(w))
	for i, c := range w {
		ref, _ := ResolveReference(c)
		pairs[i] = DiffPair{Commit: c, Reference: ref}
	}
	return pairs
}
