package vocab

import (
	"bufio"
	"encoding/binary"
	"io"
	"sort"

	"github.com/Nnwww/readable-w2v/errors"
)

// Binary layout, little-endian. Words-only variant:
//
//	int32  nwords
//	int64  ntokens
//	int64  pruneidxSize        (-1 not computed, 0 empty, >0 count)
//	nwords × { word bytes, NUL, int64 count }
//	max(pruneidxSize, 0) × { int32 key, int32 value }
//
// The label-aware variant stores int32 size, nwords, nlabels in place of
// the lone nwords field, and a one-byte type ordinal after each count.
// The hash index and the subsampling table are never persisted; Load
// reconstructs both. Prune map pairs are written in ascending key order so
// the output is deterministic.

// Save writes the dictionary to w in the layout of its variant.
func (d *Dictionary) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if d.opts.hasLabels() {
		for _, v := range []int32{d.size, d.nwords, d.nlabels} {
			if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
				return errors.Wrapf(err, "writing header")
			}
		}
	} else {
		if err := binary.Write(bw, binary.LittleEndian, d.nwords); err != nil {
			return errors.Wrapf(err, "writing header")
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, d.ntokens); err != nil {
		return errors.Wrapf(err, "writing header")
	}
	if err := binary.Write(bw, binary.LittleEndian, d.pruneidxSize); err != nil {
		return errors.Wrapf(err, "writing header")
	}

	for i, e := range d.words {
		if _, err := bw.WriteString(e.Word); err != nil {
			return errors.Wrapf(err, "writing entry %d", i)
		}
		if err := bw.WriteByte(0); err != nil {
			return errors.Wrapf(err, "writing entry %d", i)
		}
		if err := binary.Write(bw, binary.LittleEndian, e.Count); err != nil {
			return errors.Wrapf(err, "writing entry %d", i)
		}
		if d.opts.hasLabels() {
			if err := bw.WriteByte(byte(e.Type)); err != nil {
				return errors.Wrapf(err, "writing entry %d", i)
			}
		}
	}

	keys := make([]int32, 0, len(d.pruneidx))
	for k := range d.pruneidx {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		if err := binary.Write(bw, binary.LittleEndian, k); err != nil {
			return errors.Wrapf(err, "writing prune index")
		}
		if err := binary.Write(bw, binary.LittleEndian, d.pruneidx[k]); err != nil {
			return errors.Wrapf(err, "writing prune index")
		}
	}

	return bw.Flush()
}

// Load replaces the dictionary contents with the stream's, reconstructing
// the hash index and the subsampling table. When r is a *bufio.Reader it
// is read directly and exactly the encoded payload is consumed, so a
// dictionary may be embedded in a larger model stream; any other reader is
// wrapped and may be read ahead. Truncated or malformed input yields a
// decode error; the dictionary should be considered unusable afterwards.
func (d *Dictionary) Load(r io.Reader) error {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var size, nwords, nlabels int32
	if d.opts.hasLabels() {
		for _, v := range []*int32{&size, &nwords, &nlabels} {
			if err := binary.Read(br, binary.LittleEndian, v); err != nil {
				return errors.Wrapf(err, "reading header")
			}
		}
	} else {
		if err := binary.Read(br, binary.LittleEndian, &nwords); err != nil {
			return errors.Wrapf(err, "reading header")
		}
		size = nwords
	}
	var ntokens, pruneidxSize int64
	if err := binary.Read(br, binary.LittleEndian, &ntokens); err != nil {
		return errors.Wrapf(err, "reading header")
	}
	if err := binary.Read(br, binary.LittleEndian, &pruneidxSize); err != nil {
		return errors.Wrapf(err, "reading header")
	}
	if size < 0 || size > MaxVocabSize || nwords < 0 || nlabels < 0 ||
		nwords+nlabels != size || ntokens < 0 || pruneidxSize < -1 {
		return errors.Errorf("invalid header: size=%d nwords=%d nlabels=%d ntokens=%d pruneidx=%d",
			size, nwords, nlabels, ntokens, pruneidxSize)
	}

	words := make([]Entry, 0, size)
	for i := int32(0); i < size; i++ {
		word, err := br.ReadString(0)
		if err != nil {
			return errors.Wrapf(err, "entry %d: unterminated word", i)
		}
		e := Entry{Word: word[:len(word)-1]}
		if err := binary.Read(br, binary.LittleEndian, &e.Count); err != nil {
			return errors.Wrapf(err, "entry %d: reading count", i)
		}
		if d.opts.hasLabels() {
			t, err := br.ReadByte()
			if err != nil {
				return errors.Wrapf(err, "entry %d: reading type", i)
			}
			if t > byte(Label) {
				return errors.Errorf("entry %d: invalid type %d", i, t)
			}
			e.Type = EntryType(t)
		}
		words = append(words, e)
	}

	var pruneidx map[int32]int32
	if pruneidxSize > 0 {
		pruneidx = make(map[int32]int32, pruneidxSize)
	}
	for i := int64(0); i < pruneidxSize; i++ {
		var key, value int32
		if err := binary.Read(br, binary.LittleEndian, &key); err != nil {
			return errors.Wrapf(err, "prune pair %d", i)
		}
		if err := binary.Read(br, binary.LittleEndian, &value); err != nil {
			return errors.Wrapf(err, "prune pair %d", i)
		}
		pruneidx[key] = value
	}

	d.words = words
	d.ntokens = ntokens
	d.pruneidxSize = pruneidxSize
	d.pruneidx = pruneidx
	d.rebuildIndex()
	if d.nwords != nwords || d.nlabels != nlabels {
		return errors.Errorf("header mismatch: %d words / %d labels declared, %d / %d found",
			nwords, nlabels, d.nwords, d.nlabels)
	}
	d.initDiscard()
	return nil
}
