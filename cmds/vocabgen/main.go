package main

import (
	"log"
	"math/rand"
	"os"
	"sync/atomic"

	arg "github.com/alexflint/go-arg"
	humanize "github.com/dustin/go-humanize"

	"github.com/Nnwww/readable-w2v/vocab"
	"github.com/Nnwww/readable-w2v/workerpool"
)

func maybeQuit(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	args := struct {
		Input         string `arg:"positional,required" help:"corpus file of whitespace-delimited tokens"`
		Output        string `help:"path for the saved dictionary"`
		Supervised    bool   `help:"build a label-aware dictionary for a supervised model"`
		Label         string `help:"label prefix (implies --supervised)"`
		MinCount      int64  `help:"minimum word count"`
		MinCountLabel int64  `help:"minimum label count"`
		Sample        float64
		Verbose       int
		Readers       int `help:"run one read-back epoch with this many concurrent readers"`
	}{
		Output:   "vocab.bin",
		MinCount: 5,
		Sample:   1e-4,
		Verbose:  1,
	}

	arg.MustParse(&args)

	opts := vocab.DefaultOptions()
	if args.Supervised || args.Label != "" {
		opts = vocab.DefaultSupervisedOptions()
		if args.Label != "" {
			opts.Label = args.Label
		}
	}
	opts.MinCount = args.MinCount
	opts.MinCountLabel = args.MinCountLabel
	opts.SampleThreshold = args.Sample
	opts.Verbose = args.Verbose

	f, err := os.Open(args.Input)
	maybeQuit(err)

	d := vocab.New(opts)
	maybeQuit(d.ReadCorpus(vocab.NewCorpus(f)))
	maybeQuit(f.Close())

	out, err := os.Create(args.Output)
	maybeQuit(err)
	maybeQuit(d.Save(out))
	maybeQuit(out.Close())

	log.Printf("saved %s words, %s labels (%s tokens read) to %s",
		humanize.Comma(int64(d.NumWords())),
		humanize.Comma(int64(d.NumLabels())),
		humanize.Comma(d.NumTokens()),
		args.Output)

	if args.Readers > 0 {
		readBack(d, args.Input, args.Readers)
	}
}

// readBack runs roughly one epoch of line iteration the way trainer
// workers would: the frozen dictionary shared, one corpus stream and one
// random source per reader.
func readBack(d *vocab.Dictionary, path string, readers int) {
	var read, kept int64

	pool := workerpool.New(readers)
	var jobs []workerpool.Job
	for i := 0; i < readers; i++ {
		seed := int64(i)
		jobs = append(jobs, func() error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			c := vocab.NewCorpus(f)
			rng := rand.New(rand.NewSource(seed))
			target := d.NumTokens() / int64(readers)

			var words []int32
			var n int64
			var zero int
			for n < target {
				var consumed int32
				words, consumed = d.ReadLine(c, words, rng)
				if consumed == 0 {
					// one zero read is the end-of-stream call before the
					// implicit rewind; two in a row means a full pass
					// yields nothing
					zero++
					if zero > 1 {
						break
					}
					continue
				}
				zero = 0
				n += int64(consumed)
				atomic.AddInt64(&kept, int64(len(words)))
			}
			atomic.AddInt64(&read, n)
			return nil
		})
	}
	pool.Add(jobs)
	maybeQuit(pool.Wait())

	log.Printf("read-back epoch: %s tokens consumed, %s ids kept after subsampling",
		humanize.Comma(read), humanize.Comma(kept))
}
