package posting

// DiffResult partitions the postings of two snapshots by identity key.
type DiffResult struct {
	New       []Posting
	Removed   []Posting
	Unchanged []Posting
}

// AllCurrent is the full current snapshot, new postings first.
func (d DiffResult) AllCurrent() []Posting {
	out := make([]Posting, 0, len(d.New)+len(d.Unchanged))
	out = append(out, d.New...)
	return append(out, d.Unchanged...)
}

func (d DiffResult) HasChanges() bool {
	return len(d.New) > 0 || len(d.Removed) > 0
}

// keyed maps keys to postings. a key keeps the position it was first
// seen at while its value is the one seen last.
type keyed struct {
	order  []string
	values map[string]Posting
}

func index(postings []Posting) keyed {
	idx := keyed{values: make(map[string]Posting, len(postings))}
	for _, p := range postings {
		if _, ok := idx.values[p.UniqueKey]; !ok {
			idx.order = append(idx.order, p.UniqueKey)
		}
		idx.values[p.UniqueKey] = p
	}
	return idx
}

// Diff compares a previous snapshot against the current one, unchanged
// postings carry their current values.
func Diff(previous, current []Posting) DiffResult {
	prev := index(previous)
	curr := index(current)

	var result DiffResult
	for _, key := range curr.order {
		if _, ok := prev.values[key]; ok {
			result.Unchanged = append(result.Unchanged, curr.values[key])
			continue
		}
		result.New = append(result.New, curr.values[key])
	}
	for _, key := range prev.order {
		if _, ok := curr.values[key]; !ok {
			result.Removed = append(result.Removed, prev.values[key])
		}
	}
	return result
}
