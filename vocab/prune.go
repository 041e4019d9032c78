package vocab

import "sort"

// Prune compacts the entry store down to the word ids in ids (intersected
// with the current word id range) plus every label entry, preserving
// original relative order and reassigning dense ids with a single forward
// scan. The hash index is rebuilt from the compacted store. The size of
// the externally maintained prune map is recorded for serialization.
// Returns the sorted kept word ids.
func (d *Dictionary) Prune(ids []int32) []int32 {
	var kept []int32
	for _, id := range ids {
		if id >= 0 && id < d.nwords {
			kept = append(kept, id)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })

	d.pruneidxSize = int64(len(d.pruneidx))

	var j int32
	for i := int32(0); i < int32(len(d.words)); i++ {
		if d.words[i].Type == Label ||
			(int(j) < len(kept) && kept[j] == i) {
			d.words[j] = d.words[i]
			j++
		}
	}
	d.words = d.words[:j]
	d.rebuildIndex()
	// ids moved, so the id-indexed subsampling table must follow
	d.initDiscard()
	return kept
}

// SetPruneIndex installs the prune map: original word id to replacement
// id. It is populated by an external collaborator (typically a
// subword/hash extension); the dictionary only stores and serializes it.
// Prune records its size.
func (d *Dictionary) SetPruneIndex(m map[int32]int32) {
	d.pruneidx = m
}

// IsPruned reports whether Prune has run (or a pruned dictionary was
// loaded).
func (d *Dictionary) IsPruned() bool {
	return d.pruneidxSize >= 0
}

// PushHash appends the combined-id-space id for a subword bucket id. It is
// a no-op when pruning is inactive or id is negative. With an active prune
// map, id is remapped through it, and ids absent from the map are silently
// skipped.
func (d *Dictionary) PushHash(hashes []int32, id int32) []int32 {
	if d.pruneidxSize == 0 || id < 0 {
		return hashes
	}
	if d.pruneidxSize > 0 {
		mapped, ok := d.pruneidx[id]
		if !ok {
			return hashes
		}
		id = mapped
	}
	return append(hashes, d.nwords+id)
}
