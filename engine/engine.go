package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/fuzzyjoin/blocking"
	"github.com/hupe1980/fuzzyjoin/compare"
	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/model"
)

// Engine joins tables according to an immutable configuration.
// An Engine is safe for concurrent use; each Join owns its own state.
type Engine struct {
	cfg  *config.Config
	opts Options
}

// New creates an Engine. cfg must not be modified afterwards.
func New(cfg *config.Config, optFns ...func(o *Options)) (*Engine, error) {
	if cfg == nil {
		return nil, &model.ConfigError{Field: "config", Reason: "is nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{
		Pipeline:        compare.DefaultPipeline(),
		Logger:          slog.New(slog.DiscardHandler),
		Observer:        NoopMetricsObserver{},
		LargeBlockRatio: 0.5,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Pipeline == nil {
		opts.Pipeline = compare.DefaultPipeline()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Observer == nil {
		opts.Observer = NoopMetricsObserver{}
	}

	return &Engine{cfg: cfg, opts: opts}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Result is the outcome of a join.
type Result struct {
	Matches model.MatchSet
	Stats   Stats
}

// leftRow is a validated left record.
type leftRow struct {
	rec model.Record
	id  string
	raw string
}

// Join matches every left record against the right records sharing at least
// one n-gram with it.
//
// Configuration and schema problems are reported before scanning starts.
// If ctx is cancelled while scanning, the matches found so far are returned
// together with the context error.
func (e *Engine) Join(ctx context.Context, left, right model.Table) (*Result, error) {
	cfg := e.cfg
	log := e.opts.Logger
	obs := e.opts.Observer

	res := &Result{
		Matches: model.MatchSet{},
		Stats: Stats{
			LeftRecords:  len(left.Records),
			RightRecords: len(right.Records),
		},
	}

	e.transition(StateIndexing)
	start := time.Now()
	idx, err := blocking.Build(right, cfg.RightField, cfg.RightID, func(o *blocking.Options) {
		o.NGramSize = cfg.NGramSize
		o.Collate = cfg.Collate
		o.StrictIDs = cfg.StrictIDs
	})
	res.Stats.IndexDuration = time.Since(start)
	if err != nil {
		obs.OnIndex(res.Stats.IndexDuration, blocking.Stats{}, err)
		log.ErrorContext(ctx, "index build failed", "table", right.Name, "error", err)
		return nil, err
	}
	res.Stats.Index = idx.Stats()
	obs.OnIndex(res.Stats.IndexDuration, res.Stats.Index, nil)
	e.logIndex(ctx, right.Name, res.Stats)

	rows, uniqueLeft, err := e.validateLeft(left)
	if err != nil {
		log.ErrorContext(ctx, "left table rejected", "table", left.Name, "error", err)
		return nil, err
	}

	e.transition(StateScanning)
	start = time.Now()
	shards := shardBounds(len(rows), cfg.Workers)
	res.Stats.Shards = len(shards)

	results := make([]shardResult, len(shards))
	prog := e.newProgress(len(rows))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range shards {
		g.Go(func() error {
			shardStart := time.Now()
			results[i] = e.scan(gctx, idx, rows[b[0]:b[1]], prog)
			obs.OnShard(i, results[i].stats, time.Since(shardStart))
			return results[i].err
		})
	}
	scanErr := g.Wait()
	res.Stats.ScanDuration = time.Since(start)

	var seen map[model.PairKey]struct{}
	if !uniqueLeft {
		// Repeated left identifiers could yield the same pair twice.
		seen = make(map[model.PairKey]struct{})
	}
	for _, r := range results {
		res.Stats.add(r.stats)
		for _, m := range r.matches {
			if seen != nil {
				k := model.PairKey{Left: m.Left.Value(cfg.LeftID), Right: m.Right.Value(cfg.RightID)}
				if _, dup := seen[k]; dup {
					res.Stats.Matches--
					continue
				}
				seen[k] = struct{}{}
			}
			res.Matches = append(res.Matches, m)
		}
	}

	e.transition(StateDone)
	if scanErr != nil {
		log.WarnContext(ctx, "join interrupted",
			"processed_matches", len(res.Matches),
			"error", scanErr,
		)
		return res, scanErr
	}

	log.InfoContext(ctx, "join completed",
		"left", res.Stats.LeftRecords,
		"right", res.Stats.RightRecords,
		"candidates", res.Stats.Candidates,
		"excluded", res.Stats.Excluded,
		"comparisons", res.Stats.Comparisons,
		"matches", res.Stats.Matches,
		"shards", res.Stats.Shards,
		"duration", res.Stats.IndexDuration+res.Stats.ScanDuration,
	)
	return res, nil
}

func (e *Engine) transition(s State) {
	e.opts.Observer.OnState(s)
	e.opts.Logger.Debug("join state", "state", s.String())
}

// minLargeBlockRecords is the right table size below which block sizes are
// not reported.
const minLargeBlockRecords = 100

func (e *Engine) logIndex(ctx context.Context, table string, st Stats) {
	log := e.opts.Logger
	log.DebugContext(ctx, "index built",
		"table", table,
		"records", st.Index.Records,
		"ngrams", st.Index.NGrams,
		"postings", st.Index.Postings,
		"duration", st.IndexDuration,
	)
	if st.Index.Records >= minLargeBlockRecords && float64(st.Index.MaxBlock) > e.opts.LargeBlockRatio*float64(st.Index.Records) {
		log.WarnContext(ctx, "large block, join degrades toward a full cross product",
			"ngram", st.Index.MaxBlockNGram,
			"block", st.Index.MaxBlock,
			"records", st.Index.Records,
		)
	}
}

// validateLeft checks that every left record has the identifier and the
// comparison field. It reports whether left identifiers are unique.
func (e *Engine) validateLeft(left model.Table) ([]leftRow, bool, error) {
	cfg := e.cfg
	rows := make([]leftRow, len(left.Records))
	first := make(map[string]int, len(left.Records))
	unique := true

	for i, rec := range left.Records {
		id, ok := rec.Get(cfg.LeftID)
		if !ok {
			return nil, false, &model.SchemaError{Table: left.Name, Row: i, Field: cfg.LeftID}
		}
		raw, ok := rec.Get(cfg.LeftField)
		if !ok {
			return nil, false, &model.SchemaError{Table: left.Name, Row: i, ID: id, Field: cfg.LeftField}
		}
		if j, dup := first[id]; dup {
			if cfg.StrictIDs {
				return nil, false, &model.DuplicateIDError{Table: left.Name, ID: id, Rows: [2]int{j, i}}
			}
			unique = false
		} else {
			first[id] = i
		}
		rows[i] = leftRow{rec: rec, id: id, raw: raw}
	}
	return rows, unique, nil
}

type shardResult struct {
	matches model.MatchSet
	stats   Stats
	err     error
}

// scan joins a contiguous run of left rows. It only reads shared state.
func (e *Engine) scan(ctx context.Context, idx *blocking.Index, rows []leftRow, prog *progress) shardResult {
	cfg := e.cfg
	pl := e.opts.Pipeline
	var out shardResult

	attempted := roaring.New()
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			out.err = err
			return out
		}

		collated := cfg.Collate(row.raw)
		attempted.Clear()
		for slot := range idx.Candidates(collated) {
			if !attempted.CheckedAdd(slot) {
				continue
			}
			out.stats.Candidates++

			right := idx.Record(slot)
			if cfg.Exclude(row.rec, right) {
				out.stats.Excluded++
				continue
			}

			out.stats.Comparisons++
			pair := &compare.Pair{
				Left:          row.rec,
				Right:         right,
				LeftRaw:       row.raw,
				RightRaw:      right.Value(cfg.RightField),
				LeftCollated:  collated,
				RightCollated: idx.Collated(slot),
			}
			o := pl.Run(pair, cfg)
			if !o.Pass {
				continue
			}
			out.stats.Matches++
			out.matches = append(out.matches, model.Match{
				Score: o.Score,
				Left:  row.rec,
				Right: right,
				Trace: o.Trace,
			})
		}
		prog.step(ctx)
	}
	return out
}

// shardBounds splits n rows into at most workers contiguous [lo, hi) ranges.
func shardBounds(n, workers int) [][2]int {
	if workers < 1 {
		workers = 1
	}
	if n == 0 {
		return [][2]int{{0, 0}}
	}
	workers = min(workers, n)
	size := (n + workers - 1) / workers

	bounds := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		bounds = append(bounds, [2]int{lo, min(lo+size, n)})
	}
	return bounds
}

// progress reports scanned left records at most once per interval across
// all shards.
type progress struct {
	enabled   bool
	total     int
	start     time.Time
	processed atomic.Int64
	sometimes *rate.Sometimes
	log       *slog.Logger
	obs       MetricsObserver
}

func (e *Engine) newProgress(total int) *progress {
	return &progress{
		enabled:   e.cfg.Progress,
		total:     total,
		start:     time.Now(),
		sometimes: &rate.Sometimes{Interval: e.cfg.ProgressInterval},
		log:       e.opts.Logger,
		obs:       e.opts.Observer,
	}
}

func (p *progress) step(ctx context.Context) {
	n := p.processed.Add(1)
	if !p.enabled {
		return
	}
	p.sometimes.Do(func() {
		elapsed := time.Since(p.start)
		p.obs.OnProgress(int(n), p.total, elapsed)
		p.log.InfoContext(ctx, "progress",
			"record", n,
			"total", p.total,
			"elapsed", elapsed.Round(time.Millisecond),
		)
	})
}
