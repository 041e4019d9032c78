package main

import (
	"fmt"
	"log"
	"os"

	arg "github.com/alexflint/go-arg"
	humanize "github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"

	"github.com/Nnwww/readable-w2v/vocab"
)

func maybeQuit(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	args := struct {
		Dict   string `arg:"positional,required" help:"dictionary saved by vocabgen"`
		Labels bool   `help:"the dictionary was built label-aware"`
		Top    int    `help:"number of most frequent words to print"`
	}{
		Top: 10,
	}

	arg.MustParse(&args)

	opts := vocab.DefaultOptions()
	if args.Labels {
		opts = vocab.DefaultSupervisedOptions()
	}

	f, err := os.Open(args.Dict)
	maybeQuit(err)
	defer f.Close()

	d := vocab.New(opts)
	maybeQuit(d.Load(f))

	fmt.Printf("words:  %s\n", humanize.Comma(int64(d.NumWords())))
	fmt.Printf("labels: %s\n", humanize.Comma(int64(d.NumLabels())))
	fmt.Printf("tokens: %s\n", humanize.Comma(d.NumTokens()))
	fmt.Printf("pruned: %v\n", d.IsPruned())

	counts := d.Counts(vocab.Word)
	if len(counts) == 0 {
		return
	}

	data := make([]float64, len(counts))
	for i, c := range counts {
		data[i] = float64(c)
	}
	mean, err := stats.Mean(data)
	maybeQuit(err)
	median, err := stats.Median(data)
	maybeQuit(err)
	p90, err := stats.Percentile(data, 90)
	maybeQuit(err)
	p99, err := stats.Percentile(data, 99)
	maybeQuit(err)
	fmt.Printf("count distribution: mean %.1f, median %.1f, p90 %.1f, p99 %.1f\n",
		mean, median, p90, p99)

	top := args.Top
	if top > len(counts) {
		top = len(counts)
	}
	fmt.Println("most frequent words:")
	for id := int32(0); id < int32(top); id++ {
		w, err := d.Word(id)
		maybeQuit(err)
		fmt.Printf("  %8s  %q\n", humanize.Comma(counts[id]), w)
	}
}
