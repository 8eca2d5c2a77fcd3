// fagen generates synthetic FASTA files for benchmarking facomp.
//
// Sequences are drawn from a seeded RNG, so runs are reproducible. A GC bias
// can be applied to make some records compress better than others.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		outputFile = flag.String("o", "", "output FASTA file (default: stdout)")
		numRecords = flag.Int("n", 1, "number of records to generate")
		seqLen     = flag.Int("len", 10000, "residues per record")
		lineWidth  = flag.Int("width", 60, "residues per output line")
		gcBias     = flag.Float64("gc", 0.5, "probability of G/C at each position")
		seed       = flag.Uint64("seed", 42, "random seed for reproducibility")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `fagen - Generate synthetic FASTA for benchmarking

Usage:
  fagen -n 10 -len 100000 -o synthetic.fa
  fagen -n 1 -len 5000 -gc 0.8 | facomp -l 50

Options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *numRecords < 1 || *seqLen < 1 || *lineWidth < 1 {
		return fmt.Errorf("-n, -len and -width must be positive")
	}
	if *gcBias < 0 || *gcBias > 1 {
		return fmt.Errorf("-gc must be between 0 and 1")
	}

	writer, cleanup, err := openOutput(*outputFile)
	if err != nil {
		return err
	}
	defer cleanup()

	// Deterministic RNG for reproducible output
	//nolint:gosec // intentionally using math/rand for reproducibility, not security
	rng := rand.New(rand.NewPCG(*seed, *seed))

	return generate(writer, rng, *numRecords, *seqLen, *lineWidth, *gcBias)
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func generate(w io.Writer, rng *rand.Rand, numRecords, seqLen, lineWidth int, gcBias float64) error {
	bw := bufio.NewWriter(w)

	for rec := 1; rec <= numRecords; rec++ {
		fmt.Fprintf(bw, ">synthetic_%d\n", rec)

		for written := 0; written < seqLen; {
			n := min(lineWidth, seqLen-written)
			for range n {
				bw.WriteByte(randomBase(rng, gcBias))
			}
			bw.WriteByte('\n')
			written += n
		}
	}

	return bw.Flush()
}

func randomBase(rng *rand.Rand, gcBias float64) byte {
	if rng.Float64() < gcBias {
		if rng.IntN(2) == 0 {
			return 'G'
		}
		return 'C'
	}
	if rng.IntN(2) == 0 {
		return 'A'
	}
	return 'T'
}
