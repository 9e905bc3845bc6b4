// gfapath2fa converts the paths and walks of a GFA graph into FASTA sequences.
package main

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phobologic/gfapath2fa/internal/config"
	"github.com/phobologic/gfapath2fa/internal/discover"
	"github.com/phobologic/gfapath2fa/internal/fasta"
	"github.com/phobologic/gfapath2fa/internal/graph"
	"github.com/phobologic/gfapath2fa/internal/selection"
)

var version = "dev"

const defaultLogLevel = "warn"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// settings is the merged result of the config file and flags.
type settings struct {
	width      int
	strict     bool
	workers    int
	maxPaths   int
	pathFilter string
	logLevel   string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gfapath2fa", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		s           settings
		output      string
		cachePath   string
		configPath  string
		verbose     bool
		showVersion bool
	)

	fs.StringVar(&output, "o", "", "output file (directory when the input is a directory)")
	fs.StringVar(&output, "output", "", "output file (directory when the input is a directory)")
	fs.IntVar(&s.width, "w", 0, "wrap sequence lines at this many columns (0 = no wrapping)")
	fs.IntVar(&s.width, "width", 0, "wrap sequence lines at this many columns (0 = no wrapping)")
	fs.BoolVar(&s.strict, "strict", false, "reject sequences with symbols other than ACGTN")
	fs.IntVar(&s.workers, "j", runtime.GOMAXPROCS(0), "number of paths resolved in parallel")
	fs.IntVar(&s.workers, "jobs", runtime.GOMAXPROCS(0), "number of paths resolved in parallel")
	fs.IntVar(&s.maxPaths, "n", 0, "maximum number of paths to emit")
	fs.IntVar(&s.maxPaths, "max-paths", 0, "maximum number of paths to emit")
	fs.StringVar(&s.pathFilter, "p", "", "emit only paths whose name contains this (case-insensitive)")
	fs.StringVar(&s.pathFilter, "path", "", "emit only paths whose name contains this (case-insensitive)")
	fs.StringVar(&cachePath, "cache", "", "cache file path")
	fs.StringVar(&configPath, "config", "", "JSON config file")
	fs.StringVar(&s.logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&verbose, "v", false, "debug logging")
	fs.BoolVar(&verbose, "verbose", false, "debug logging")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: gfapath2fa [flags] [input.gfa | input.gfa.gz | - | directory]

Write one FASTA record per P-line path and W-line walk of a GFA file.
Reads standard input when no input (or "-") is given. A directory input
converts every .gfa/.gfa.gz file under it into -o DIR.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "gfapath2fa %s\n", version)
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	s = mergeConfig(fs, s, cfg)
	if verbose {
		s.logLevel = "debug"
	}
	if s.width < 0 {
		return fmt.Errorf("width must be >= 0, got %d", s.width)
	}

	level, err := log.ParseLevel(s.logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger := log.NewWithOptions(stderr, log.Options{Prefix: "gfapath2fa", Level: level})

	input := "-"
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one input, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		input = fs.Arg(0)
	}

	if input == "-" {
		if cachePath != "" {
			logger.Warn("cache ignored for standard input")
		}
		return convertTo(output, func(w io.Writer) error {
			r, err := maybeGunzip(bufio.NewReader(stdin))
			if err != nil {
				return fmt.Errorf("stdin: %w", err)
			}
			return convert(r, w, "stdin", s, logger)
		}, stdout)
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input path: %w", err)
	}
	if info.IsDir() {
		if cachePath != "" {
			logger.Warn("cache ignored for directory input")
		}
		return convertDir(input, output, s, logger)
	}

	key := s.cacheKey()
	if cachePath != "" {
		if data, ok := readCache(cachePath, input, key); ok {
			logger.Debug("using cache", "path", cachePath)
			return convertTo(output, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}, stdout)
		}
	}

	var out bytes.Buffer
	if err := convertFile(input, &out, s, logger); err != nil {
		return err
	}

	if cachePath != "" {
		data := append([]byte(key+"\n"), out.Bytes()...)
		if err := os.WriteFile(cachePath, data, 0o644); err != nil {
			logger.Warn("could not write cache", "path", cachePath, "err", err)
		}
	}

	return convertTo(output, func(w io.Writer) error {
		_, err := w.Write(out.Bytes())
		return err
	}, stdout)
}

// mergeConfig applies config file values for every flag not set explicitly.
func mergeConfig(fs *flag.FlagSet, s settings, cfg *config.Config) settings {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	either := func(names ...string) bool {
		for _, n := range names {
			if set[n] {
				return true
			}
		}
		return false
	}

	if !either("w", "width") && cfg.Width > 0 {
		s.width = cfg.Width
	}
	if !either("strict") && cfg.Strict {
		s.strict = true
	}
	if !either("j", "jobs") && cfg.Workers > 0 {
		s.workers = cfg.Workers
	}
	if !either("n", "max-paths") && cfg.MaxPaths > 0 {
		s.maxPaths = cfg.MaxPaths
	}
	if !either("p", "path") && cfg.PathFilter != "" {
		s.pathFilter = cfg.PathFilter
	}
	if !either("log-level") && cfg.LogLevel != "" {
		s.logLevel = cfg.LogLevel
	}
	return s
}

// convert loads one GFA stream and writes its paths as FASTA to w.
// Nothing is written unless the whole graph loads.
func convert(r io.Reader, w io.Writer, name string, s settings, logger *log.Logger) error {
	opts := graph.Options{Strict: s.strict, Workers: s.workers}

	start := time.Now()
	g, err := graph.Scan(r, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("scanned graph", "input", name, "segments", g.NumSegments(), "paths", g.NumPaths())

	records, err := graph.Resolve(g, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("resolved paths", "input", name, "records", len(records), "workers", s.workers, "elapsed", time.Since(start))

	records = selection.FilterByName(records, s.pathFilter)
	records = selection.SelectPaths(records, s.maxPaths)
	if len(records) == 0 {
		logger.Warn("no paths to write", "input", name)
	}

	fw := fasta.NewWriter(w)
	fw.Columns = s.width
	return fw.WriteAll(records)
}

func convertFile(path string, w io.Writer, s settings, logger *log.Logger) error {
	rc, err := openInput(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return convert(rc, w, path, s, logger)
}

// convertDir converts every GFA file under root into outDir, keeping the
// relative layout. Every file is rendered before any output is written, so
// a failing file leaves outDir untouched.
func convertDir(root, outDir string, s settings, logger *log.Logger) error {
	if outDir == "" {
		return fmt.Errorf("%s is a directory: -o DIR is required", root)
	}

	files, err := discover.Files(root)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no GFA files found under %s", root)
	}
	logger.Info("discovered GFA files", "root", root, "count", len(files))

	rendered := make([]bytes.Buffer, len(files))
	for i, f := range files {
		if err := convertFile(filepath.Join(root, f.Path), &rendered[i], s, logger); err != nil {
			return err
		}
	}

	for i, f := range files {
		dest := filepath.Join(outDir, f.OutputPath())
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, rendered[i].Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		logger.Info("converted", "input", f.Path, "output", dest)
	}
	return nil
}

// convertTo runs write against stdout, or against the output file when one
// is named. File output is rendered in memory first so a failed conversion
// never creates the file.
func convertTo(output string, write func(io.Writer) error, stdout io.Writer) error {
	if output == "" {
		return write(stdout)
	}

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		_ = os.Remove(output)
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	return errors.Join(g.Reader.Close(), g.f.Close())
}

// openInput opens a GFA file, transparently decompressing gzip input
// detected by its magic number.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	if !isGzip(br) {
		return struct {
			io.Reader
			io.Closer
		}{br, f}, nil
	}
	gr, err := gzip.NewReader(br)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &gzipFile{Reader: gr, f: f}, nil
}

func maybeGunzip(br *bufio.Reader) (io.Reader, error) {
	if !isGzip(br) {
		return br, nil
	}
	return gzip.NewReader(br)
}

func isGzip(br *bufio.Reader) bool {
	magic, _ := br.Peek(2)
	return len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b
}

// cacheKey identifies the settings that shape the output. It is stored as
// the first line of the cache file.
func (s settings) cacheKey() string {
	return fmt.Sprintf("# gfapath2fa %s width=%d strict=%t max_paths=%d path=%q",
		version, s.width, s.strict, s.maxPaths, s.pathFilter)
}

// readCache returns the cached FASTA for input when the cache is newer than
// input and was written with the same settings key.
func readCache(cachePath, input, key string) ([]byte, bool) {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return nil, false
	}
	fi, err := os.Stat(input)
	if err != nil || !fi.ModTime().Before(cacheInfo.ModTime()) {
		return nil, false
	}
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	header, body, ok := bytes.Cut(data, []byte("\n"))
	if !ok || string(header) != key {
		return nil, false
	}
	return body, true
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-o": true, "--o": true,
	"-output": true, "--output": true,
	"-w": true, "--w": true,
	"-width": true, "--width": true,
	"-j": true, "--j": true,
	"-jobs": true, "--jobs": true,
	"-n": true, "--n": true,
	"-max-paths": true, "--max-paths": true,
	"-p": true, "--p": true,
	"-path": true, "--path": true,
	"-cache": true, "--cache": true,
	"-config": true, "--config": true,
	"-log-level": true, "--log-level": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg). A lone "-"
// is the stdin positional, not a flag.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 1 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
