package fuzzyjoin

import (
	"context"
	"time"

	"github.com/hupe1980/fuzzyjoin/blobstore"
	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/engine"
	"github.com/hupe1980/fuzzyjoin/model"
	"github.com/hupe1980/fuzzyjoin/table"
)

type (
	// Table is a named, ordered sequence of records.
	Table = model.Table
	// Record is one row of a table.
	Record = model.Record
	// Match is an accepted left/right pair.
	Match = model.Match
	// MatchSet is an ordered list of matches.
	MatchSet = model.MatchSet
	// StageResult is the outcome of one comparison stage.
	StageResult = model.StageResult
	// Stats summarizes a join.
	Stats = engine.Stats
)

// NewTable builds a table from a header and rows.
func NewTable(name string, header []string, rows [][]string) Table {
	return model.NewTable(name, header, rows)
}

// Result is the outcome of a join.
type Result struct {
	Matches MatchSet
	Stats   Stats
}

// Joiner runs fuzzy joins with a fixed configuration.
// A Joiner is safe for concurrent use.
type Joiner struct {
	cfg    *config.Config
	eng    *engine.Engine
	logger *Logger
	mc     MetricsCollector
	topts  []func(*table.Options)
}

// New creates a Joiner. The identifier and comparison fields are required.
func New(opts ...Option) (*Joiner, error) {
	o := applyOptions(opts)

	cfg, err := config.New(o.config...)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(cfg,
		engine.WithPipeline(o.pipeline),
		engine.WithLogger(o.logger.Logger),
		engine.WithObserver(metricsObserver{mc: o.metrics}),
	)
	if err != nil {
		return nil, err
	}

	return &Joiner{
		cfg:    cfg,
		eng:    eng,
		logger: o.logger,
		mc:     o.metrics,
		topts:  o.tableOpts,
	}, nil
}

// Config returns the validated configuration.
func (j *Joiner) Config() *config.Config { return j.cfg }

// Join matches every left record against the right table.
//
// On cancellation the matches found so far are returned together with an
// error wrapping ErrCancelled and the context error.
func (j *Joiner) Join(ctx context.Context, left, right Table) (*Result, error) {
	start := time.Now()

	res, err := j.eng.Join(ctx, left, right)

	var out *Result
	if res != nil {
		out = &Result{Matches: res.Matches, Stats: res.Stats}
	}

	stats := Stats{}
	if out != nil {
		stats = out.Stats
	}
	j.mc.RecordJoin(stats, time.Since(start), err)
	j.logger.LogJoin(ctx, stats, err)

	return out, translateError(err)
}

// JoinFiles loads both tables from store and joins them.
func (j *Joiner) JoinFiles(ctx context.Context, store blobstore.BlobStore, left, right string) (*Result, error) {
	tables, err := table.LoadAll(ctx, store, []string{left, right}, j.topts...)
	if err != nil {
		j.logger.LogLoad(ctx, left+","+right, 0, err)
		return nil, err
	}
	j.logger.LogLoad(ctx, left, tables[0].Len(), nil)
	j.logger.LogLoad(ctx, right, tables[1].Len(), nil)

	return j.Join(ctx, tables[0], tables[1])
}

// Multiples returns the matches whose left identifier matched more than one
// right record.
func (j *Joiner) Multiples(matches MatchSet) MatchSet {
	return FilterMultiples(j.cfg.LeftID, matches)
}

// FilterMultiples keeps the matches whose value of idField occurs in more
// than one match, preserving order.
func FilterMultiples(idField string, matches MatchSet) MatchSet {
	return engine.FilterMultiples(idField, matches)
}
