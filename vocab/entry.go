package vocab

// EntryType distinguishes regular words from classifier labels. The
// ordinal is part of the persisted format, so the values are fixed.
type EntryType byte

// Entry types
const (
	Word EntryType = iota
	Label
)

func (t EntryType) String() string {
	if t == Label {
		return "label"
	}
	return "word"
}

// Entry is a single vocabulary record. Its position in the dictionary's
// entry store is its id.
type Entry struct {
	Word  string
	Count int64
	Type  EntryType
}

// byTypeThenCount orders entries so all words precede all labels, each
// group by descending count. Ties keep an unspecified order; the sort is
// applied before ids are reassigned, so ties do not affect semantics.
func byTypeThenCount(a, b Entry) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.Count > b.Count
}
