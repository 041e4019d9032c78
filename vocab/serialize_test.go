package vocab

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveToBytes(t *testing.T, d *Dictionary) []byte {
	var buf bytes.Buffer
	require.NoError(t, d.Save(&buf))
	return buf.Bytes()
}

func requireSameDict(t *testing.T, want, got *Dictionary) {
	require.Equal(t, want.words, got.words)
	require.Equal(t, want.NumWords(), got.NumWords())
	require.Equal(t, want.NumLabels(), got.NumLabels())
	require.Equal(t, want.Size(), got.Size())
	require.Equal(t, want.NumTokens(), got.NumTokens())
	// recomputed, but must match bit for bit
	require.Equal(t, want.pdiscard, got.pdiscard)
	for id := int32(0); id < got.Size(); id++ {
		w, err := got.Word(id)
		require.NoError(t, err)
		require.Equal(t, id, got.ID(w))
	}
}

func Test_RoundTripWordsOnly(t *testing.T) {
	opts := wordsOnlyOpts(2)
	d := buildDict(t, opts, "a a a b b c\na b")

	raw := saveToBytes(t, d)

	d2 := New(opts)
	require.NoError(t, d2.Load(bytes.NewReader(raw)))
	requireSameDict(t, d, d2)
	assert.False(t, d2.IsPruned())

	// save is deterministic, and a reloaded dictionary reserializes to the
	// same bytes
	assert.Equal(t, raw, saveToBytes(t, d))
	assert.Equal(t, raw, saveToBytes(t, d2))
}

func Test_RoundTripLabels(t *testing.T) {
	opts := DefaultSupervisedOptions()
	d := buildDict(t, opts, "__label__pos good good great\n__label__neg bad\n")

	raw := saveToBytes(t, d)

	d2 := New(opts)
	require.NoError(t, d2.Load(bytes.NewReader(raw)))
	requireSameDict(t, d, d2)

	assert.Equal(t, raw, saveToBytes(t, d2))
}

func Test_RoundTripPruned(t *testing.T) {
	opts := wordsOnlyOpts(2)
	d := buildDict(t, opts, "e e e e e d d d d c c c b b a\n")

	d.SetPruneIndex(map[int32]int32{5: 0, 7: 1, 2: 2})
	d.Prune([]int32{0, 1})

	raw := saveToBytes(t, d)

	d2 := New(opts)
	require.NoError(t, d2.Load(bytes.NewReader(raw)))
	requireSameDict(t, d, d2)

	require.True(t, d2.IsPruned())
	require.Equal(t, d.pruneidxSize, d2.pruneidxSize)
	require.Equal(t, d.pruneidx, d2.pruneidx)
	assert.Equal(t, d.PushHash(nil, 7), d2.PushHash(nil, 7))

	assert.Equal(t, raw, saveToBytes(t, d2))
}

func Test_LoadEmbeddedInModelStream(t *testing.T) {
	opts := wordsOnlyOpts(2)
	d := buildDict(t, opts, "a a a b b c\na b")

	var buf bytes.Buffer
	require.NoError(t, d.Save(&buf))
	buf.WriteString("MODEL WEIGHTS")

	br := bufio.NewReader(&buf)
	d2 := New(opts)
	require.NoError(t, d2.Load(br))
	requireSameDict(t, d, d2)

	rest, err := io.ReadAll(br)
	require.NoError(t, err)
	assert.Equal(t, "MODEL WEIGHTS", string(rest), "load must consume exactly the dictionary payload")
}

func Test_LoadDecodeErrors(t *testing.T) {
	opts := wordsOnlyOpts(2)
	d := buildDict(t, opts, "a a a b b c\na b")
	raw := saveToBytes(t, d)

	type tc struct {
		desc string
		raw  []byte
	}

	tcs := []tc{
		{desc: "empty", raw: nil},
		{desc: "header cut short", raw: raw[:6]},
		{desc: "unterminated word", raw: raw[:21]},
		{desc: "entries missing", raw: raw[:len(raw)-4]},
	}

	for i, tc := range tcs {
		d2 := New(opts)
		err := d2.Load(bytes.NewReader(tc.raw))
		assert.Error(t, err, "\ncase %d: %s", i, tc.desc)
	}
}

func Test_LoadRejectsBadHeader(t *testing.T) {
	opts := wordsOnlyOpts(2)
	d := buildDict(t, opts, "a a a b b c\na b")
	raw := saveToBytes(t, d)

	// nwords = -1
	bad := append([]byte(nil), raw...)
	bad[0], bad[1], bad[2], bad[3] = 0xff, 0xff, 0xff, 0xff
	d2 := New(opts)
	assert.Error(t, d2.Load(bytes.NewReader(bad)))
}

func Test_LoadRejectsBadTypeByte(t *testing.T) {
	opts := DefaultSupervisedOptions()
	d := buildDict(t, opts, "__label__pos good\n")
	raw := saveToBytes(t, d)

	// the first entry's type byte follows its NUL-terminated word and
	// 8-byte count; header is 3×int32 + 2×int64
	header := 3*4 + 2*8
	var wordEnd int
	for i := header; i < len(raw); i++ {
		if raw[i] == 0 {
			wordEnd = i
			break
		}
	}
	require.NotZero(t, wordEnd)
	bad := append([]byte(nil), raw...)
	bad[wordEnd+1+8] = 0xfe

	d2 := New(opts)
	assert.Error(t, d2.Load(bytes.NewReader(bad)))
}

func Test_LoadPruneTableTruncated(t *testing.T) {
	opts := wordsOnlyOpts(2)
	d := buildDict(t, opts, "e e e e e d d d d c c c b b a\n")
	d.SetPruneIndex(map[int32]int32{1: 0})
	d.Prune([]int32{0, 1})

	raw := saveToBytes(t, d)
	d2 := New(opts)
	assert.Error(t, d2.Load(bytes.NewReader(raw[:len(raw)-2])))
}
