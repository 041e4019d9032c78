package vocab

// Model selects the training mode the dictionary feeds. It only affects
// subsampling: supervised models never discard tokens.
type Model int

// Supported training modes
const (
	ModelCBOW Model = iota
	ModelSkipgram
	ModelSupervised
)

// Options configures a Dictionary. It is owned by the caller and read-only
// to the dictionary once New is called.
type Options struct {
	// Label is the prefix that marks a token as a label entry. An empty
	// Label selects the words-only dictionary: no label classification,
	// the compact persistence layout, and line-length capping in ReadLine.
	Label string

	// MinCount and MinCountLabel are the final thresholds applied to word
	// and label entries after ingestion.
	MinCount      int64
	MinCountLabel int64

	// SampleThreshold is the subsampling target t in
	// pdiscard = sqrt(t/f) + t/f.
	SampleThreshold float64

	Model Model

	// Verbose controls progress logging only: >0 logs an ingestion
	// summary, >1 additionally logs progress every million tokens.
	Verbose int
}

// DefaultOptions returns options for an unsupervised words-only dictionary.
func DefaultOptions() Options {
	return Options{
		MinCount:        5,
		MinCountLabel:   0,
		SampleThreshold: 1e-4,
		Model:           ModelSkipgram,
	}
}

// DefaultSupervisedOptions returns options for a label-aware dictionary
// feeding a supervised classifier.
func DefaultSupervisedOptions() Options {
	return Options{
		Label:           "__label__",
		MinCount:        1,
		MinCountLabel:   0,
		SampleThreshold: 1e-4,
		Model:           ModelSupervised,
	}
}

func (o Options) hasLabels() bool {
	return o.Label != ""
}
