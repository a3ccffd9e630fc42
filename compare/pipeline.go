package compare

import (
	"strconv"
	"strings"

	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/model"
)

// Stage names.
const (
	StageRawEqual           = "raw-equal"
	StageCollatedEqual      = "collated-equal"
	StageNumbersExact       = "numbers-exact"
	StageNumbersPermutation = "numbers-permutation"
	StageNumbersSubset      = "numbers-subset"
	StageFuzzy              = "fuzzy"
)

// Pair is a left/right candidate with raw and collated comparison values.
type Pair struct {
	Left  model.Record
	Right model.Record

	LeftRaw       string
	RightRaw      string
	LeftCollated  string
	RightCollated string
}

// NewPair reads and collates the configured comparison fields of left and
// right.
func NewPair(left, right model.Record, cfg *config.Config) (*Pair, error) {
	lv, ok := left.Get(cfg.LeftField)
	if !ok {
		return nil, &model.SchemaError{Table: "left", Row: -1, ID: left.Value(cfg.LeftID), Field: cfg.LeftField}
	}
	rv, ok := right.Get(cfg.RightField)
	if !ok {
		return nil, &model.SchemaError{Table: "right", Row: -1, ID: right.Value(cfg.RightID), Field: cfg.RightField}
	}
	return &Pair{
		Left:          left,
		Right:         right,
		LeftRaw:       lv,
		RightRaw:      rv,
		LeftCollated:  cfg.Collate(lv),
		RightCollated: cfg.Collate(rv),
	}, nil
}

// Stage is one step of the comparison pipeline.
type Stage interface {
	Name() string
	// Evaluate must not modify the pair or the config.
	Evaluate(p *Pair, cfg *config.Config) model.StageResult
}

// Outcome is the result of running a pipeline over a pair.
type Outcome struct {
	Pass  bool
	Score float64
	Trace []model.StageResult
}

// Pipeline runs stages in order and stops at the first failure or at the
// first stage that marks its result final.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline from stages.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// DefaultPipeline returns the standard six-stage pipeline.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		RawEqual{},
		CollatedEqual{},
		NumbersStage{Policy: config.NumbersExact},
		NumbersStage{Policy: config.NumbersPermutation},
		NumbersStage{Policy: config.NumbersSubset},
		Fuzzy{},
	)
}

// Stages returns the stage names in evaluation order.
func (pl *Pipeline) Stages() []string {
	names := make([]string, len(pl.stages))
	for i, s := range pl.stages {
		names[i] = s.Name()
	}
	return names
}

// Run evaluates the pair. A pair passes only if every evaluated stage
// passed; its score is the score of the last scored stage.
func (pl *Pipeline) Run(p *Pair, cfg *config.Config) Outcome {
	out := Outcome{Trace: make([]model.StageResult, 0, len(pl.stages))}
	for _, s := range pl.stages {
		r := s.Evaluate(p, cfg)
		out.Trace = append(out.Trace, r)
		if !r.Pass {
			out.Score = r.Score
			return out
		}
		if r.Scored {
			out.Score = r.Score
		}
		if r.Final {
			break
		}
	}
	out.Pass = true
	return out
}

// RawEqual matches byte-identical raw values.
type RawEqual struct{}

// Name implements Stage.
func (RawEqual) Name() string { return StageRawEqual }

// Evaluate implements Stage. Unequal values pass on to the next stage.
func (RawEqual) Evaluate(p *Pair, _ *config.Config) model.StageResult {
	if p.LeftRaw == p.RightRaw {
		return model.StageResult{Stage: StageRawEqual, Pass: true, Score: 1.0, Scored: true, Final: true}
	}
	return model.StageResult{Stage: StageRawEqual, Pass: true}
}

// CollatedEqual matches identical collated values.
type CollatedEqual struct{}

// Name implements Stage.
func (CollatedEqual) Name() string { return StageCollatedEqual }

// Evaluate implements Stage.
func (CollatedEqual) Evaluate(p *Pair, _ *config.Config) model.StageResult {
	if p.LeftCollated == p.RightCollated {
		return model.StageResult{Stage: StageCollatedEqual, Pass: true, Score: 1.0, Scored: true, Final: true}
	}
	return model.StageResult{Stage: StageCollatedEqual, Pass: true}
}

// NumbersStage applies a numeric predicate to the raw values when Policy is
// the configured policy and passes otherwise.
type NumbersStage struct {
	Policy config.NumberPolicy
}

// Name implements Stage.
func (s NumbersStage) Name() string {
	switch s.Policy {
	case config.NumbersExact:
		return StageNumbersExact
	case config.NumbersPermutation:
		return StageNumbersPermutation
	case config.NumbersSubset:
		return StageNumbersSubset
	default:
		return "numbers-" + s.Policy.String()
	}
}

// Evaluate implements Stage.
func (s NumbersStage) Evaluate(p *Pair, cfg *config.Config) model.StageResult {
	name := s.Name()
	if cfg.Numbers != s.Policy || s.Policy == config.NumbersNone {
		return model.StageResult{Stage: name, Pass: true, Meta: map[string]string{"skipped": "true"}}
	}

	var pass bool
	switch s.Policy {
	case config.NumbersExact:
		pass = NumbersExact(p.LeftRaw, p.RightRaw)
	case config.NumbersPermutation:
		pass = NumbersPermutation(p.LeftRaw, p.RightRaw)
	case config.NumbersSubset:
		pass = NumbersSubset(p.LeftRaw, p.RightRaw)
	}

	r := model.StageResult{Stage: name, Pass: pass}
	if !pass {
		r.Meta = map[string]string{
			"left":  strings.Join(Numbers(p.LeftRaw), " "),
			"right": strings.Join(Numbers(p.RightRaw), " "),
		}
	}
	return r
}

// Fuzzy scores the collated values with the configured distance.
type Fuzzy struct{}

// Name implements Stage.
func (Fuzzy) Name() string { return StageFuzzy }

// Evaluate implements Stage.
func (Fuzzy) Evaluate(p *Pair, cfg *config.Config) model.StageResult {
	score := Score(cfg.Distance, p.LeftCollated, p.RightCollated)
	pass := score >= cfg.Threshold
	return model.StageResult{
		Stage:  StageFuzzy,
		Pass:   pass,
		Score:  score,
		Scored: true,
		Final:  pass,
		Meta:   map[string]string{"threshold": strconv.FormatFloat(cfg.Threshold, 'g', -1, 64)},
	}
}
