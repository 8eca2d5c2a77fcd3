// Package pipeline runs the single-pass windowing-and-compressibility scan:
// FASTA parsing, window accumulation, scoring, and record emission.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/luyoutao/fa-seq-compressibility/internal/bed"
	"github.com/luyoutao/fa-seq-compressibility/internal/fasta"
	"github.com/luyoutao/fa-seq-compressibility/internal/score"
	"github.com/luyoutao/fa-seq-compressibility/internal/window"
)

// Options configures a pipeline run.
type Options struct {
	WindowLength int         // residues per window, must be positive
	Framing      bed.Framing // output framing, chosen by the caller
	Workers      int         // scoring workers; <= 1 runs the sequential path
	// Logf receives diagnostic events (skipped windows, dropped tails).
	// Nil disables diagnostics. Must be safe for concurrent use when
	// Workers > 1.
	Logf func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Run scans FASTA from r and writes one scored record per full window to w.
// Records appear in window discovery order regardless of worker count.
// Configuration is validated before any input is read.
func Run(r io.Reader, w io.Writer, opts Options) error {
	acc, err := window.New(opts.WindowLength)
	if err != nil {
		return err
	}

	if opts.Workers <= 1 {
		return runSequential(r, w, acc, opts)
	}
	return runParallel(r, w, acc, opts)
}

func runSequential(r io.Reader, w io.Writer, acc *window.Accumulator, opts Options) error {
	scorer, err := score.New()
	if err != nil {
		return err
	}
	out := bed.NewWriter(w, opts.Framing)

	var chrom string
	emit := func(win window.Window) error {
		rec, skip, err := scoreWindow(scorer, chrom, win, opts)
		if err != nil || skip {
			return err
		}
		return out.Write(rec)
	}

	sc := fasta.NewScanner(r)
	for {
		ev, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("parsing FASTA: %w", err)
		}

		if ev.Header {
			dropTail(acc, chrom, opts)
			chrom = ev.Name
			continue
		}
		if err := acc.Append(ev.Seq, emit); err != nil {
			return err
		}
	}

	dropTail(acc, chrom, opts)
	return nil
}

// scoreWindow scores one window and builds its output record. A window whose
// compressed form does not exceed the gzip envelope is skipped and reported,
// never emitted with a wrapped ratio.
func scoreWindow(scorer *score.Scorer, chrom string, win window.Window, opts Options) (bed.Record, bool, error) {
	res, err := scorer.Score(win.Seq)
	if errors.Is(err, score.ErrEnvelopeUnderflow) {
		opts.logf("skipping window %s:%d-%d: %v",
			chrom, win.Index*opts.WindowLength, (win.Index+1)*opts.WindowLength, err)
		return bed.Record{}, true, nil
	}
	if err != nil {
		return bed.Record{}, false, err
	}

	return bed.Record{
		Chrom: chrom,
		Start: win.Index * opts.WindowLength,
		End:   (win.Index + 1) * opts.WindowLength,
		Seq:   win.Seq,
		Ratio: res.Ratio,
	}, false, nil
}

func dropTail(acc *window.Accumulator, chrom string, opts Options) {
	if n := acc.Pending(); n > 0 {
		opts.logf("dropping %d trailing residue(s) of %s shorter than window length %d",
			n, chrom, opts.WindowLength)
	}
	acc.Reset()
}

// scoreJob is one window handed to a scoring worker.
type scoreJob struct {
	seqNum int
	chrom  string
	win    window.Window
}

// scoreResult is one window's encoded output. data is nil for skipped
// windows; ordering is restored by seqNum.
type scoreResult struct {
	seqNum int
	data   []byte
	err    error
}

// runParallel fans windows out to scoring workers and writes their encoded
// records back in discovery order, so the output bytes match the sequential
// path exactly.
func runParallel(r io.Reader, w io.Writer, acc *window.Accumulator, opts Options) error {
	jobs := make(chan scoreJob, opts.Workers*2)
	results := make(chan scoreResult, opts.Workers*2)

	// The collector holds its own cancel handle so a failing sink tears the
	// whole run down instead of leaving workers blocked on results.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	for range opts.Workers {
		g.Go(func() error {
			return runScoreWorker(ctx, jobs, results, opts)
		})
	}

	g.Go(func() error {
		defer close(jobs)
		return produceWindows(ctx, r, acc, jobs, opts)
	})

	var collectorErr error
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		collectorErr = collectAndWriteRecords(results, w, cancel)
	}()

	workerErr := g.Wait()
	close(results)

	<-collectorDone

	// A sink failure cancels the workers, so their context errors are only
	// fallout; report the collector's error first.
	if collectorErr != nil {
		return collectorErr
	}
	return workerErr
}

func runScoreWorker(ctx context.Context, jobs <-chan scoreJob, results chan<- scoreResult, opts Options) error {
	scorer, err := score.New()
	if err != nil {
		return err
	}

	for job := range jobs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, skip, err := scoreWindow(scorer, job.chrom, job.win, opts)
		result := scoreResult{seqNum: job.seqNum, err: err}
		if err == nil && !skip {
			result.data, result.err = bed.Encode(rec, opts.Framing)
		}

		select {
		case results <- result:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func produceWindows(ctx context.Context, r io.Reader, acc *window.Accumulator, jobs chan<- scoreJob, opts Options) error {
	var chrom string
	seqNum := 0

	emit := func(win window.Window) error {
		select {
		case jobs <- scoreJob{seqNum: seqNum, chrom: chrom, win: win}:
			seqNum++
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	sc := fasta.NewScanner(r)
	for {
		ev, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("parsing FASTA: %w", err)
		}

		if ev.Header {
			dropTail(acc, chrom, opts)
			chrom = ev.Name
			continue
		}
		if err := acc.Append(ev.Seq, emit); err != nil {
			return err
		}
	}

	dropTail(acc, chrom, opts)
	return nil
}

// collectAndWriteRecords drains results until the channel closes. On the
// first error it cancels the run but keeps draining so no worker is ever
// left blocked on a send.
func collectAndWriteRecords(results <-chan scoreResult, w io.Writer, cancel context.CancelFunc) error {
	pending := make(map[int][]byte)
	nextSeqNum := 0
	var firstErr error

	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for result := range results {
		if firstErr != nil {
			continue
		}
		if result.err != nil {
			fail(fmt.Errorf("scoring window %d: %w", result.seqNum, result.err))
			continue
		}

		pending[result.seqNum] = result.data

		// Write all sequential results available
		for firstErr == nil {
			data, ok := pending[nextSeqNum]
			if !ok {
				break
			}
			if len(data) > 0 {
				if _, err := w.Write(data); err != nil {
					fail(fmt.Errorf("writing record %d: %w", nextSeqNum, err))
					break
				}
			}
			delete(pending, nextSeqNum)
			nextSeqNum++
		}
	}

	return firstErr
}
