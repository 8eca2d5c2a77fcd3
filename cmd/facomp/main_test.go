package main

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/luyoutao/fa-seq-compressibility/internal/bed"
	"github.com/luyoutao/fa-seq-compressibility/internal/config"
)

func TestOpenInputPlainFASTA(t *testing.T) {
	t.Parallel()

	want := []byte(">chr1\nACGT\n")
	path := filepath.Join(t.TempDir(), "genome.fa")
	if err := os.WriteFile(path, want, 0o600); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	r, cleanup, err := openInput(path)
	if err != nil {
		t.Fatalf("openInput: %v", err)
	}
	defer cleanup()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Fatalf("content mismatch: got %q want %q", got, want)
	}
}

func TestOpenInputGzipByExtension(t *testing.T) {
	t.Parallel()

	want := []byte(">chr1\nACGT\n")
	path := filepath.Join(t.TempDir(), "genome.fa.gz")
	writeGzipFile(t, path, want)

	r, cleanup, err := openInput(path)
	if err != nil {
		t.Fatalf("openInput: %v", err)
	}
	defer cleanup()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Fatalf("content mismatch: got %q want %q", got, want)
	}
}

func TestOpenInputGzipByMagicBytes(t *testing.T) {
	t.Parallel()

	// Gzip content behind a plain .fa name is still detected by magic bytes.
	want := []byte(">chr1\nACGT\n")
	tmpDir := t.TempDir()
	gzPath := filepath.Join(tmpDir, "genome.fa.gz")
	writeGzipFile(t, gzPath, want)

	rawGz, err := os.ReadFile(gzPath)
	if err != nil {
		t.Fatalf("read gzip fixture: %v", err)
	}
	path := filepath.Join(tmpDir, "genome.fa")
	if err := os.WriteFile(path, rawGz, 0o600); err != nil {
		t.Fatalf("write raw gzip fixture: %v", err)
	}

	r, cleanup, err := openInput(path)
	if err != nil {
		t.Fatalf("openInput: %v", err)
	}
	defer cleanup()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Fatalf("content mismatch: got %q want %q", got, want)
	}
}

func TestOpenInputRejectsNonFASTAExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reads.fastq")
	if err := os.WriteFile(path, []byte(">chr1\nACGT\n"), 0o600); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	if _, _, err := openInput(path); err == nil {
		t.Fatal("expected error for non-FASTA extension")
	}
}

func TestHasFastaExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"hg38.fa", true},
		{"hg38.fasta", true},
		{"HG38.FA", true},
		{"hg38.fa.gz", true},
		{"hg38.fasta.gz", true},
		{"reads.fastq", false},
		{"reads.fq.gz", false},
		{"output.bed", false},
		{"archive.gz", false},
	}

	for _, tt := range tests {
		if got := hasFastaExtension(tt.path); got != tt.want {
			t.Errorf("hasFastaExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOpenOutputSelectsFramingBySuffix(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	_, cleanup, framing, err := openOutput(filepath.Join(tmpDir, "out.bed"))
	if err != nil {
		t.Fatalf("openOutput: %v", err)
	}
	cleanup()
	if framing != bed.FramingPlain {
		t.Fatalf("plain path: got framing %v, want FramingPlain", framing)
	}

	_, cleanup, framing, err = openOutput(filepath.Join(tmpDir, "out.bed.gz"))
	if err != nil {
		t.Fatalf("openOutput: %v", err)
	}
	cleanup()
	if framing != bed.FramingGzipPerLine {
		t.Fatalf("gz path: got framing %v, want FramingGzipPerLine", framing)
	}
}

func TestApplyConfigDefaults(t *testing.T) {
	t.Parallel()

	seqlen := 50
	workers := 4
	fileCfg := config.File{Facomp: config.Facomp{Seqlen: &seqlen, Workers: &workers}}

	// Nothing set on the command line: config values apply.
	cfg := cliConfig{workers: 1}
	applyConfigDefaults(&cfg, fileCfg, map[string]bool{})
	if cfg.seqlen != 50 || cfg.workers != 4 {
		t.Fatalf("unset flags: got seqlen=%d workers=%d, want 50 and 4", cfg.seqlen, cfg.workers)
	}

	// An explicit -w 1 must not be overridden even though it equals the
	// flag's default value.
	cfg = cliConfig{workers: 1}
	applyConfigDefaults(&cfg, fileCfg, map[string]bool{"w": true})
	if cfg.workers != 1 {
		t.Fatalf("explicit -w 1: got workers=%d, want 1", cfg.workers)
	}
	if cfg.seqlen != 50 {
		t.Fatalf("explicit -w 1: got seqlen=%d, want 50", cfg.seqlen)
	}

	// Either spelling of the window-length flag blocks the config value.
	for _, name := range []string{"l", "seqlen"} {
		cfg = cliConfig{seqlen: 25, workers: 1}
		applyConfigDefaults(&cfg, fileCfg, map[string]bool{name: true})
		if cfg.seqlen != 25 {
			t.Fatalf("explicit -%s: got seqlen=%d, want 25", name, cfg.seqlen)
		}
	}
}

func writeGzipFile(t *testing.T, path string, data []byte) {
	t.Helper()

	f, err := os.Create(path) //nolint:gosec // test fixture path
	if err != nil {
		t.Fatalf("create gzip file: %v", err)
	}
	defer func() { _ = f.Close() }()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		t.Fatalf("write gzip data: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
}
