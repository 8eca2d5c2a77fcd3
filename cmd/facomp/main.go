// facomp computes gzip compressibility for fixed-length windows of a FASTA
// file and writes a six-column BED-like annotation table.
package main

import (
	"bufio"
	"compress/gzip"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/luyoutao/fa-seq-compressibility/internal/bed"
	"github.com/luyoutao/fa-seq-compressibility/internal/config"
	"github.com/luyoutao/fa-seq-compressibility/internal/pipeline"
)

var version = "dev"

const (
	exitSuccess = 0
	exitError   = 1
)

type cliConfig struct {
	inputFile  string
	outputFile string
	seqlen     int
	workers    int
	configFile string
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, done, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}
	if done {
		return exitSuccess
	}

	input, cleanup, err := openInput(cfg.inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}
	defer cleanup()

	output, cleanup, framing, err := openOutput(cfg.outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}
	defer cleanup()

	logger := log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
	logger.Printf("{ inFile = %q, outFile = %q, seqlen = %d, workers = %d, gzout = %t, version = %s }",
		cfg.inputFile, cfg.outputFile, cfg.seqlen, cfg.workers, framing == bed.FramingGzipPerLine, version)
	logger.Printf("start processing FASTA...")

	opts := pipeline.Options{
		WindowLength: cfg.seqlen,
		Framing:      framing,
		Workers:      cfg.workers,
		Logf:         logger.Printf,
	}
	if err := pipeline.Run(input, output, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}

	logger.Printf("all done")
	return exitSuccess
}

func parseFlags() (cliConfig, bool, error) {
	var cfg cliConfig
	var showVersion, showHelp bool

	flag.StringVar(&cfg.inputFile, "i", "", "input FASTA file (default: stdin; .gz accepted)")
	flag.StringVar(&cfg.inputFile, "inFile", "", "alias for -i")
	flag.StringVar(&cfg.outputFile, "o", "", "output file (default: stdout; '.gz' suffix selects compressed output)")
	flag.StringVar(&cfg.outputFile, "outFile", "", "alias for -o")
	flag.IntVar(&cfg.seqlen, "l", 0, "length (bp) of the windows (required)")
	flag.IntVar(&cfg.seqlen, "seqlen", 0, "alias for -l")
	flag.IntVar(&cfg.workers, "w", 1, "scoring workers (1 = sequential)")
	flag.StringVar(&cfg.configFile, "config", "", "optional TOML config file with default settings")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")
	flag.BoolVar(&showHelp, "h", false, "show help")

	flag.Usage = usage
	flag.Parse()

	if showHelp {
		flag.Usage()
		return cfg, true, nil
	}

	if showVersion {
		fmt.Printf("facomp version %s\n", version)
		return cfg, true, nil
	}

	// Handle positional arguments
	args := flag.Args()
	if len(args) > 0 && cfg.inputFile == "" {
		cfg.inputFile = args[0]
	}
	if len(args) > 1 && cfg.outputFile == "" {
		cfg.outputFile = args[1]
	}

	if cfg.configFile != "" {
		fileCfg, err := config.Load(cfg.configFile)
		if err != nil {
			return cfg, false, err
		}
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		applyConfigDefaults(&cfg, fileCfg, set)
	}

	if cfg.seqlen <= 0 {
		return cfg, false, errors.New("-l/--seqlen must be a positive integer")
	}

	return cfg, false, nil
}

// applyConfigDefaults fills settings from the config file for flags the user
// did not pass on the command line. An explicit flag always wins, even when
// it repeats the flag's default value.
func applyConfigDefaults(cfg *cliConfig, fileCfg config.File, set map[string]bool) {
	if !set["l"] && !set["seqlen"] && fileCfg.Facomp.Seqlen != nil {
		cfg.seqlen = *fileCfg.Facomp.Seqlen
	}
	if !set["w"] && fileCfg.Facomp.Workers != nil {
		cfg.workers = *fileCfg.Facomp.Workers
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `facomp - gzip compressibility of fixed-length genomic windows

Scans a FASTA file, slices each chromosome into consecutive non-overlapping
windows of the given length, and reports per window how well the sequence
compresses. Trailing residues shorter than the window length are dropped.

Usage:
  facomp -l 50 [-i hg38.fa] [-o output.bed]
  facomp -l 50 -i hg38.fa.gz -o output.bed.gz
  cat hg38.fa | facomp -l 50 > output.bed

Output columns:
  1) chromosome name
  2) start coordinate (0-based)
  3) end coordinate
  4) sequence (uppercased)
  5) gzip compressibility ratio
  6) strand (always '+')

Options:
`)
	flag.PrintDefaults()
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return wrapInputMaybeGzip(path, os.Stdin, func() {})
	}

	if !hasFastaExtension(path) {
		return nil, nil, fmt.Errorf("%s does not look like a FASTA file (want .fa/.fasta, optionally .gz)", path)
	}

	f, err := os.Open(path) //nolint:gosec // CLI tool needs to open user-specified files
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open input: %w", err)
	}
	return wrapInputMaybeGzip(path, f, func() { _ = f.Close() })
}

func hasFastaExtension(path string) bool {
	p := strings.ToLower(path)
	p = strings.TrimSuffix(p, ".gz")
	return strings.HasSuffix(p, ".fa") || strings.HasSuffix(p, ".fasta")
}

func wrapInputMaybeGzip(path string, in io.Reader, closeInput func()) (io.Reader, func(), error) {
	br := bufio.NewReaderSize(in, 1<<20)
	hasGzipMagic, err := inputHasGzipMagic(br)
	if err != nil {
		closeInput()
		return nil, nil, fmt.Errorf("cannot inspect input: %w", err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".gz") || hasGzipMagic {
		gz, err := gzip.NewReader(br)
		if err != nil {
			closeInput()
			return nil, nil, fmt.Errorf("cannot open gzip input: %w", err)
		}
		return gz, func() {
			_ = gz.Close()
			closeInput()
		}, nil
	}

	return br, closeInput, nil
}

func inputHasGzipMagic(br *bufio.Reader) (bool, error) {
	header, err := br.Peek(2)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return len(header) == 2 && header[0] == 0x1f && header[1] == 0x8b, nil
}

func openOutput(path string) (io.Writer, func(), bed.Framing, error) {
	if path == "" || path == "-" {
		bw := bufio.NewWriterSize(os.Stdout, 1<<20)
		return bw, func() { _ = bw.Flush() }, bed.FramingPlain, nil
	}

	framing := bed.FramingPlain
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		framing = bed.FramingGzipPerLine
	}

	f, err := os.Create(path) //nolint:gosec // CLI tool needs to create user-specified files
	if err != nil {
		return nil, nil, framing, fmt.Errorf("cannot create output: %w", err)
	}
	bw := bufio.NewWriterSize(f, 1<<20)
	return bw, func() { _ = bw.Flush(); _ = f.Close() }, framing, nil
}
