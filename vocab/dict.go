// Package vocab builds and serves the vocabulary dictionary for training:
// token ingestion with frequency counting, threshold-based pruning, word
// subsampling, id lookup during training passes, and a binary persistence
// format that round-trips exactly.
//
// A Dictionary is built single-threaded (ReadCorpus, Threshold, Prune,
// Load), then frozen. All read paths touch no shared mutable state, so a
// frozen Dictionary may be shared across any number of trainer workers,
// each with its own Corpus and random source.
package vocab

import (
	"log"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/Nnwww/readable-w2v/errors"
)

const (
	// MaxVocabSize is the fixed capacity of the hash index. Ingestion
	// keeps the live entry count at or below 75% of it so linear probes
	// stay short and always terminate.
	MaxVocabSize = 30000000

	// MaxLineSize caps tokens consumed per line by ReadLine.
	MaxLineSize = 1024

	pruneNotComputed = -1

	thresholdTrigger = MaxVocabSize * 3 / 4
)

// ErrEmptyVocabulary is returned by ReadCorpus when nothing survives the
// final thresholds. Training cannot proceed, so callers are expected to
// treat it as fatal rather than retry.
var ErrEmptyVocabulary = errors.New("empty vocabulary: try a smaller min count")

// Hash returns the 32-bit FNV-1a hash of the word's bytes. It is exported
// because subword consumers hash tokens once and reuse the value via
// IDWithHash.
func Hash(word string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(word); i++ {
		h ^= uint32(word[i])
		h *= 16777619
	}
	return h
}

// Dictionary maps tokens to dense integer ids. Entries are stored in id
// order: after thresholding, ids [0, nwords) are words and
// [nwords, nwords+nlabels) are labels.
type Dictionary struct {
	opts Options

	// word2int is the open-addressing hash index: -1 marks an empty slot,
	// anything else is an entry id. It is rebuilt from scratch after every
	// bulk reorder (threshold, prune, load) because probe sequences depend
	// on which slots are occupied.
	word2int []int32
	words    []Entry

	pdiscard []float64

	size    int32
	nwords  int32
	nlabels int32
	ntokens int64

	pruneidxSize int64
	pruneidx     map[int32]int32
}

// New returns an empty dictionary configured by opts.
func New(opts Options) *Dictionary {
	d := &Dictionary{
		opts:         opts,
		word2int:     make([]int32, MaxVocabSize),
		pruneidxSize: pruneNotComputed,
	}
	for i := range d.word2int {
		d.word2int[i] = -1
	}
	return d
}

// find probes linearly from hash(word) % MaxVocabSize and returns the slot
// holding the word's id, or the first empty slot if the word is absent.
func (d *Dictionary) find(word string) int32 {
	return d.findWith(word, Hash(word))
}

func (d *Dictionary) findWith(word string, h uint32) int32 {
	slot := int32(h % MaxVocabSize)
	for d.word2int[slot] != -1 && d.words[d.word2int[slot]].Word != word {
		slot = (slot + 1) % MaxVocabSize
	}
	return slot
}

// entryType classifies a token by the configured label prefix. The
// words-only dictionary has no labels.
func (d *Dictionary) entryType(word string) EntryType {
	if d.opts.hasLabels() && strings.HasPrefix(word, d.opts.Label) {
		return Label
	}
	return Word
}

// Add counts one occurrence of word, creating its entry on first sight.
// This is the single mutation path for counts.
func (d *Dictionary) Add(word string) {
	slot := d.find(word)
	d.ntokens++
	if d.word2int[slot] == -1 {
		d.words = append(d.words, Entry{
			Word:  word,
			Count: 1,
			Type:  d.entryType(word),
		})
		d.word2int[slot] = d.size
		d.size++
	} else {
		d.words[d.word2int[slot]].Count++
	}
}

// NumWords returns the number of word entries.
func (d *Dictionary) NumWords() int32 { return d.nwords }

// NumLabels returns the number of label entries.
func (d *Dictionary) NumLabels() int32 { return d.nlabels }

// Size returns the total number of entries.
func (d *Dictionary) Size() int32 { return d.size }

// NumTokens returns the lifetime count of tokens ever added, including
// tokens whose entries were later thresholded away.
func (d *Dictionary) NumTokens() int64 { return d.ntokens }

// ID returns the id of word, or -1 if it is not in the vocabulary.
func (d *Dictionary) ID(word string) int32 {
	return d.word2int[d.find(word)]
}

// IDWithHash is ID for callers that already hashed the word.
func (d *Dictionary) IDWithHash(word string, h uint32) int32 {
	return d.word2int[d.findWith(word, h)]
}

// Word returns the token for id.
func (d *Dictionary) Word(id int32) (string, error) {
	if id < 0 || id >= d.size {
		return "", errors.Errorf("id %d out of range [0, %d)", id, d.size)
	}
	return d.words[id].Word, nil
}

// Type returns the entry type for id.
func (d *Dictionary) Type(id int32) (EntryType, error) {
	if id < 0 || id >= d.size {
		return Word, errors.Errorf("id %d out of range [0, %d)", id, d.size)
	}
	return d.words[id].Type, nil
}

// Label returns the token for the label id lid. Label ids count from zero
// at the first label entry, the way the line readers emit them.
func (d *Dictionary) Label(lid int32) (string, error) {
	if lid < 0 || lid >= d.nlabels {
		return "", errors.Errorf("label id %d out of range [0, %d)", lid, d.nlabels)
	}
	return d.words[lid+d.nwords].Word, nil
}

// Counts returns the counts of all entries of the given type, in id order.
func (d *Dictionary) Counts(t EntryType) []int64 {
	var counts []int64
	for _, e := range d.words {
		if e.Type == t {
			counts = append(counts, e.Count)
		}
	}
	return counts
}

// ReadCorpus ingests every token from c, applies the configured final
// thresholds, and computes the subsampling table. While ingesting, an
// incremental threshold keeps the hash index at or below 75% occupancy;
// its cutoff starts at 1 and grows by 1 per trigger, independent of the
// configured thresholds. That can remove entries the final thresholds
// alone would keep, and is preserved as-is because it affects
// reproducibility of built vocabularies.
func (d *Dictionary) ReadCorpus(c *Corpus) error {
	minThreshold := int64(1)
	for {
		word, ok := c.ReadWord()
		if !ok {
			break
		}
		d.Add(word)
		if d.ntokens%1000000 == 0 && d.opts.Verbose > 1 {
			log.Printf("read %dM words", d.ntokens/1000000)
		}
		if d.size > thresholdTrigger {
			minThreshold++
			d.Threshold(minThreshold, minThreshold)
		}
	}
	d.Threshold(d.opts.MinCount, d.opts.MinCountLabel)
	d.initDiscard()
	if d.opts.Verbose > 0 {
		log.Printf("read %dM words", d.ntokens/1000000)
		log.Printf("number of words:  %d", d.nwords)
		log.Printf("number of labels: %d", d.nlabels)
	}
	if d.size == 0 {
		return ErrEmptyVocabulary
	}
	return nil
}

// Threshold sorts entries (words before labels, descending count within
// each group), removes words with count < t and labels with count < tl,
// reassigns dense ids in scan order, and rebuilds the hash index.
func (d *Dictionary) Threshold(t, tl int64) {
	sort.Slice(d.words, func(i, j int) bool {
		return byTypeThenCount(d.words[i], d.words[j])
	})
	kept := d.words[:0]
	for _, e := range d.words {
		if (e.Type == Word && e.Count < t) || (e.Type == Label && e.Count < tl) {
			continue
		}
		kept = append(kept, e)
	}
	d.words = kept
	d.rebuildIndex()
}

// rebuildIndex resets every slot and re-probes entries in store order,
// reassigning dense ids and the size/nwords/nlabels counters as it goes.
func (d *Dictionary) rebuildIndex() {
	for i := range d.word2int {
		d.word2int[i] = -1
	}
	d.size = 0
	d.nwords = 0
	d.nlabels = 0
	for _, e := range d.words {
		slot := d.find(e.Word)
		d.word2int[slot] = d.size
		d.size++
		switch e.Type {
		case Word:
			d.nwords++
		case Label:
			d.nlabels++
		}
	}
}

// initDiscard computes the subsampling table from the lifetime token
// count. pdiscard can exceed 1 for rare words, which simply means "never
// discarded".
func (d *Dictionary) initDiscard() {
	d.pdiscard = make([]float64, d.size)
	for i := int32(0); i < d.size; i++ {
		f := float64(d.words[i].Count) / float64(d.ntokens)
		d.pdiscard[i] = math.Sqrt(d.opts.SampleThreshold/f) + d.opts.SampleThreshold/f
	}
}

// Discard reports whether the word id should be dropped from a training
// line, given a caller-supplied uniform draw on [0,1). Supervised models
// never discard. id must be a word id from this dictionary.
func (d *Dictionary) Discard(id int32, rand float64) bool {
	if d.opts.Model == ModelSupervised {
		return false
	}
	return rand > d.pdiscard[id]
}

// ReadLine reads one line of word ids for an unsupervised pass, appending
// to words and returning it along with the number of in-vocabulary tokens
// consumed (discarded tokens count, for progress accounting;
// out-of-vocabulary tokens are skipped without counting). Surviving word
// ids are subsampled through rng, and the line is truncated after
// MaxLineSize tokens. At end of stream the corpus rewinds first, so
// iteration over a fixed corpus is circular across epochs.
func (d *Dictionary) ReadLine(c *Corpus, words []int32, rng *rand.Rand) ([]int32, int32) {
	c.rewind()
	words = words[:0]
	var ntokens int32
	for {
		token, ok := c.ReadWord()
		if !ok {
			break
		}
		wid := d.IDWithHash(token, Hash(token))
		if wid < 0 {
			continue
		}
		ntokens++
		if d.words[wid].Type == Word && !d.Discard(wid, rng.Float64()) {
			words = append(words, wid)
		}
		if ntokens > MaxLineSize || token == EOS {
			break
		}
	}
	return words, ntokens
}

// ReadLineLabels reads one line for a supervised pass, splitting tokens
// into word ids and label ids. Out-of-vocabulary tokens are classified by
// the label-prefix convention so label detection still works; OOV words
// are appended as -1 while OOV labels are dropped. Label ids are offset by
// -NumWords. Returns the filled slices and the raw token count consumed.
func (d *Dictionary) ReadLineLabels(c *Corpus, words, labels []int32) ([]int32, []int32, int32) {
	c.rewind()
	words = words[:0]
	labels = labels[:0]
	var ntokens int32
	for {
		token, ok := c.ReadWord()
		if !ok {
			break
		}
		wid := d.IDWithHash(token, Hash(token))
		t := d.entryType(token)
		if wid >= 0 {
			t = d.words[wid].Type
		}
		ntokens++
		if t == Word {
			words = append(words, wid)
		} else if wid >= 0 {
			labels = append(labels, wid-d.nwords)
		}
		if token == EOS {
			break
		}
	}
	return words, labels, ntokens
}
