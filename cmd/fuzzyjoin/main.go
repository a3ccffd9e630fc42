// Command fuzzyjoin joins two CSV tables on approximately equal fields and
// writes the matches as CSV, JSON lines or SQLite.
//
// Usage:
//
//	fuzzyjoin -ids id,id -fields name,company [flags] <left.csv> <right.csv>
//
// Tables may be local paths, s3://bucket/key or minio://endpoint/bucket/key,
// optionally compressed (.gz, .zst, .lz4).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/hupe1980/fuzzyjoin"
	"github.com/hupe1980/fuzzyjoin/blobstore"
	"github.com/hupe1980/fuzzyjoin/codec"
	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/metric"
	"github.com/hupe1980/fuzzyjoin/model"
	"github.com/hupe1980/fuzzyjoin/registry"
	"github.com/hupe1980/fuzzyjoin/table"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errAborted = errors.New("user aborted")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type flags struct {
	config  string
	envFile string

	ids, fields   string
	threshold     float64
	ngram         int
	numbersExact  bool
	numbersPerm   bool
	numbersSubset bool
	collate       string
	exclude       string
	distance      string
	plugins       listFlag
	workers       int
	progress      time.Duration
	strictIDs     bool

	output    string
	multiples bool
	yes       bool
	trace     bool
	codec     string
	metrics   string

	logFormat string
	logLevel  string
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *flags) {
	f := &flags{}
	d := defaultSettings()

	fs := flag.NewFlagSet("fuzzyjoin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: fuzzyjoin -ids <left>,<right> -fields <left>,<right> [flags] <left_csv> <right_csv>")
		fs.PrintDefaults()
	}

	fs.StringVar(&f.config, "config", "", "TOML config file (env FUZZYJOIN_CONFIG)")
	fs.StringVar(&f.envFile, "env", ".env", "dotenv file loaded before reading FUZZYJOIN_* variables")

	fs.StringVar(&f.ids, "ids", "", "identifier fields <left>,<right>")
	fs.StringVar(&f.fields, "fields", "", "comparison fields <left>,<right>")
	fs.Float64Var(&f.threshold, "threshold", d.Join.Threshold, "only return matches scoring at least this value")
	fs.IntVar(&f.ngram, "ngram", d.Join.NGram, "blocking n-gram size")
	fs.BoolVar(&f.numbersExact, "numbers-exact", false, "require the same numbers in the same order")
	fs.BoolVar(&f.numbersPerm, "numbers-permutation", false, "require the same numbers in any order")
	fs.BoolVar(&f.numbersSubset, "numbers-subset", false, "require the numbers of one side to be contained in the other")
	fs.StringVar(&f.collate, "collate", d.Join.Collate, "collation function ("+strings.Join(registry.Collators.Names(), ", ")+")")
	fs.StringVar(&f.exclude, "exclude", d.Join.Exclude, "exclusion predicate ("+strings.Join(registry.Excluders.Names(), ", ")+")")
	fs.StringVar(&f.distance, "distance", d.Join.Distance, "edit distance ("+strings.Join(registry.Distances.Names(), ", ")+")")
	fs.Var(&f.plugins, "plugin", "Go script defining Collate, Exclude or Distance (repeatable)")
	fs.IntVar(&f.workers, "workers", d.Join.Workers, "parallel scanning shards")
	fs.DurationVar(&f.progress, "progress", 0, "log progress at this interval (0 disables)")
	fs.BoolVar(&f.strictIDs, "strict-ids", false, "fail on duplicate identifiers")

	fs.StringVar(&f.output, "o", d.Output.Path, "output file (.csv, .jsonl, .db/.sqlite; .gz/.zst/.lz4 for text formats)")
	fs.BoolVar(&f.multiples, "multiples", false, "only write left records matching more than one right record")
	fs.BoolVar(&f.yes, "y", false, "overwrite the output without asking")
	fs.BoolVar(&f.trace, "trace", false, "include the comparison trace in JSON lines and SQLite output")
	fs.StringVar(&f.codec, "codec", d.Output.Codec, "JSON codec (go-json, json)")
	fs.StringVar(&f.metrics, "metrics", "", "write Prometheus metrics to this file")

	fs.StringVar(&f.logFormat, "log-format", d.Log.Format, "log format (text, json)")
	fs.StringVar(&f.logLevel, "log-level", d.Log.Level, "log level (debug, info, warn, error)")

	return fs, f
}

// apply copies the explicitly set flags into s.
func (f *flags) apply(fs *flag.FlagSet, s *Settings) error {
	var err error
	var numbers []string

	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "ids":
			s.Join.LeftID, s.Join.RightID, err = pair(f.ids)
		case "fields":
			s.Join.LeftField, s.Join.RightField, err = pair(f.fields)
		case "threshold":
			s.Join.Threshold = f.threshold
		case "ngram":
			s.Join.NGram = f.ngram
		case "numbers-exact":
			if f.numbersExact {
				numbers = append(numbers, config.NumbersExact.String())
			}
		case "numbers-permutation":
			if f.numbersPerm {
				numbers = append(numbers, config.NumbersPermutation.String())
			}
		case "numbers-subset":
			if f.numbersSubset {
				numbers = append(numbers, config.NumbersSubset.String())
			}
		case "collate":
			s.Join.Collate = f.collate
		case "exclude":
			s.Join.Exclude = f.exclude
		case "distance":
			s.Join.Distance = f.distance
		case "plugin":
			s.Join.Plugins = append(s.Join.Plugins, f.plugins...)
		case "workers":
			s.Join.Workers = f.workers
		case "progress":
			s.Join.Progress = f.progress.String()
		case "strict-ids":
			s.Join.StrictIDs = f.strictIDs
		case "o":
			s.Output.Path = f.output
		case "multiples":
			s.Output.Multiples = f.multiples
		case "y":
			s.Output.Yes = f.yes
		case "trace":
			s.Output.Trace = f.trace
		case "codec":
			s.Output.Codec = f.codec
		case "metrics":
			s.Output.Metrics = f.metrics
		case "log-format":
			s.Log.Format = f.logFormat
		case "log-level":
			s.Log.Level = f.logLevel
		}
		if err != nil {
			err = fmt.Errorf("-%s: %w", fl.Name, err)
		}
	})

	if len(numbers) > 0 {
		s.Join.Numbers = strings.Join(numbers, ",")
	}
	return err
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs, f := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return exitUsage
	}

	settings, err := loadSettings(fs, f)
	if err != nil {
		fmt.Fprintf(stderr, "[Error] %v\n", err)
		return exitUsage
	}

	logger, err := newLogger(stderr, settings.Log)
	if err != nil {
		fmt.Fprintf(stderr, "[Error] %v\n", err)
		return exitUsage
	}
	logger = logger.WithRunID(uuid.NewString())

	out, err := execute(ctx, settings, fs.Arg(0), fs.Arg(1), stdin, stderr, logger)
	switch {
	case errors.Is(err, table.ErrNoMatches):
		fmt.Fprintln(stdout, "[Info] No matches found.")
		return exitOK
	case errors.Is(err, errAborted):
		fmt.Fprintln(stderr, "[Warn] User aborted.")
		return exitError
	case errors.Is(err, model.ErrConfiguration), errors.Is(err, model.ErrSchema):
		fmt.Fprintf(stderr, "[Error] %v\n", err)
		return exitUsage
	case err != nil:
		fmt.Fprintf(stderr, "[Error] %v\n", err)
		return exitError
	}

	fmt.Fprintf(stdout, "[Info] Wrote: %s\n", out)
	return exitOK
}

// loadSettings merges defaults, the TOML file, the environment and flags.
func loadSettings(fs *flag.FlagSet, f *flags) (Settings, error) {
	settings := defaultSettings()

	// Existing variables take precedence over the dotenv file.
	if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return settings, fmt.Errorf("load %s: %w", f.envFile, err)
	}

	path := f.config
	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := settings.loadFile(path); err != nil {
			return settings, err
		}
	}

	if err := settings.loadEnv(os.LookupEnv); err != nil {
		return settings, err
	}

	if err := f.apply(fs, &settings); err != nil {
		return settings, err
	}
	return settings, nil
}

func newLogger(w io.Writer, s LogSettings) (*fuzzyjoin.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(s.Format) {
	case "", "text":
		return fuzzyjoin.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return fuzzyjoin.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format: unknown format %q", s.Format)
	}
}

// execute runs the join and writes its output. It returns the written
// location.
func execute(ctx context.Context, s Settings, leftSrc, rightSrc string, stdin io.Reader, stderr io.Writer, logger *fuzzyjoin.Logger) (string, error) {
	for _, p := range s.Join.Plugins {
		names, err := registry.LoadScript(p)
		if err != nil {
			return "", err
		}
		logger.Debug("plugin loaded", "path", p, "functions", names)
	}

	cfgOpts, err := s.configOptions()
	if err != nil {
		return "", err
	}

	jc, ok := codec.ByName(s.Output.Codec)
	if !ok {
		return "", &model.ConfigError{Field: "codec", Reason: fmt.Sprintf("unknown codec %q (available: %s)", s.Output.Codec, strings.Join(codec.Names(), ", "))}
	}

	// Configuration errors are reported before any table is read.
	if _, err := config.New(cfgOpts...); err != nil {
		return "", err
	}

	left, err := loadTable(ctx, leftSrc, logger)
	if err != nil {
		return "", err
	}
	right, err := loadTable(ctx, rightSrc, logger)
	if err != nil {
		return "", err
	}

	opts := []fuzzyjoin.Option{
		fuzzyjoin.WithConfigOptions(cfgOpts...),
		fuzzyjoin.WithLogger(logger.WithTables(left.Name, right.Name)),
	}
	var pc *metric.PrometheusCollector
	if s.Output.Metrics != "" {
		pc = metric.NewPrometheusCollector("fuzzyjoin")
		opts = append(opts, fuzzyjoin.WithMetricsCollector(pc))
	}

	joiner, err := fuzzyjoin.New(opts...)
	if err != nil {
		return "", err
	}

	res, err := joiner.Join(ctx, left, right)
	if pc != nil {
		if merr := pc.WriteToTextfile(s.Output.Metrics); merr != nil {
			logger.Warn("write metrics failed", "path", s.Output.Metrics, "error", merr)
		}
	}
	if err != nil {
		return "", err
	}

	matches := res.Matches
	if s.Output.Multiples {
		matches = joiner.Multiples(matches)
	}

	out, err := writeMatches(ctx, s.Output, matches, jc, stdin, stderr)
	logger.LogWrite(ctx, s.Output.Path, len(matches), err)
	return out, err
}

func loadTable(ctx context.Context, src string, logger *fuzzyjoin.Logger) (model.Table, error) {
	loc, err := blobstore.ParseLocation(src)
	if err != nil {
		return model.Table{}, err
	}
	store, name, err := openStore(ctx, loc)
	if err != nil {
		return model.Table{}, err
	}
	tbl, err := table.Load(ctx, store, name)
	logger.LogLoad(ctx, loc.String(), tbl.Len(), err)
	return tbl, err
}

func writeMatches(ctx context.Context, s OutputSettings, matches model.MatchSet, jc codec.Codec, stdin io.Reader, stderr io.Writer) (string, error) {
	if len(matches) == 0 {
		return "", table.ErrNoMatches
	}

	loc, err := blobstore.ParseLocation(s.Path)
	if err != nil {
		return "", err
	}
	format, comp, err := table.FormatFor(loc.Key)
	if err != nil {
		return "", &model.ConfigError{Field: "output", Reason: err.Error()}
	}

	store, name, err := openStore(ctx, loc)
	if err != nil {
		return "", err
	}

	exists, err := blobstore.Exists(ctx, store, name)
	if err != nil {
		return "", err
	}
	if exists && !s.Yes {
		if !confirm(stdin, stderr, fmt.Sprintf("[Warn] <%s> already exists. Overwrite it? [y|N]: ", loc)) {
			return "", errAborted
		}
	}

	writeOpts := func(o *table.WriteOptions) {
		o.Codec = jc
		o.Trace = s.Trace
	}

	if format == table.FormatSQLite {
		if loc.Scheme != blobstore.SchemeFile {
			return "", &model.ConfigError{Field: "output", Reason: "sqlite output must be a local file"}
		}
		if err := table.WriteSQLite(ctx, loc.Key, matches, writeOpts); err != nil {
			return "", err
		}
		return absolute(loc), nil
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return "", err
	}
	if err := encodeMatches(w, format, comp, matches, writeOpts); err != nil {
		_ = w.Abort()
		return "", fmt.Errorf("write %s: %w", loc, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", loc, err)
	}
	return absolute(loc), nil
}

// encodeMatches writes matches to w in format, compressed with comp.
func encodeMatches(w io.Writer, format table.Format, comp table.Compression, matches model.MatchSet, writeOpts func(*table.WriteOptions)) error {
	cw, err := table.Compress(w, comp)
	if err != nil {
		return err
	}
	if format == table.FormatJSONL {
		err = table.WriteJSONL(cw, matches, writeOpts)
	} else {
		err = table.WriteCSV(cw, matches)
	}
	if cerr := cw.Close(); err == nil {
		err = cerr
	}
	return err
}

func confirm(stdin io.Reader, stderr io.Writer, prompt string) bool {
	fmt.Fprint(stderr, prompt)
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func absolute(loc blobstore.Location) string {
	if loc.Scheme != blobstore.SchemeFile {
		return loc.String()
	}
	if abs, err := filepath.Abs(loc.Key); err == nil {
		return abs
	}
	return loc.Key
}
