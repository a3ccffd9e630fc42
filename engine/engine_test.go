package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fuzzyjoin/blocking"
	"github.com/hupe1980/fuzzyjoin/compare"
	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/model"
)

func demoTable(name string) model.Table {
	return model.NewTable(name, []string{"id", "text"}, [][]string{
		{"1", "a hello world"},
		{"2", "hella"},
		{"3", "zzzz"},
	})
}

func newEngine(t *testing.T, opts ...config.Option) *Engine {
	t.Helper()
	base := []config.Option{config.IDs("id", "id"), config.Fields("text", "text")}
	cfg, err := config.New(append(base, opts...)...)
	require.NoError(t, err)
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func pairs(ms model.MatchSet) []string {
	out := make([]string, len(ms))
	for i, k := range ms.Keys("id", "id") {
		out[i] = k.String()
	}
	return out
}

func TestJoinDemoHighThreshold(t *testing.T) {
	e := newEngine(t, config.WithThreshold(0.8))

	res, err := e.Join(context.Background(), demoTable("left"), demoTable("right"))
	require.NoError(t, err)
	require.Len(t, res.Matches, 3)

	assert.Equal(t, []string{"Pair(1:1)", "Pair(2:2)", "Pair(3:3)"}, pairs(res.Matches))
	for _, m := range res.Matches {
		assert.Equal(t, 1.0, m.Score)
		assert.GreaterOrEqual(t, m.Score, 0.8)
	}
}

func TestJoinDemoLowThreshold(t *testing.T) {
	e := newEngine(t, config.WithThreshold(0.1))

	res, err := e.Join(context.Background(), demoTable("left"), demoTable("right"))
	require.NoError(t, err)
	require.Len(t, res.Matches, 5)

	assert.Equal(t,
		[]string{"Pair(1:1)", "Pair(1:2)", "Pair(2:1)", "Pair(2:2)", "Pair(3:3)"},
		pairs(res.Matches),
	)
	assert.InDelta(t, 1-9.0/13.0, res.Matches[1].Score, 1e-9)
	assert.InDelta(t, 1-9.0/13.0, res.Matches[2].Score, 1e-9)
	assert.Less(t, res.Matches[1].Score, 0.31)

	// Cross matches reach the fuzzy stage; identical pairs stop at raw-equal.
	assert.Equal(t, compare.StageRawEqual, res.Matches[0].Trace[len(res.Matches[0].Trace)-1].Stage)
	assert.Equal(t, compare.StageFuzzy, res.Matches[1].Trace[len(res.Matches[1].Trace)-1].Stage)

	multiples := FilterMultiples("id", res.Matches)
	assert.Len(t, multiples, 4)

	assert.Equal(t, 3, res.Stats.LeftRecords)
	assert.Equal(t, 3, res.Stats.RightRecords)
	assert.Equal(t, int64(5), res.Stats.Candidates)
	assert.Equal(t, int64(5), res.Stats.Comparisons)
	assert.Equal(t, int64(5), res.Stats.Matches)
	assert.Equal(t, 1, res.Stats.Shards)
}

func TestJoinThresholdMonotonic(t *testing.T) {
	left := model.NewTable("left", []string{"id", "text"}, [][]string{
		{"a", "acme corporation"},
		{"b", "globex inc"},
		{"c", "initech llc"},
		{"d", "umbrella corp"},
	})
	right := model.NewTable("right", []string{"id", "text"}, [][]string{
		{"1", "acme corp"},
		{"2", "globex incorporated"},
		{"3", "initech"},
		{"4", "umbrella corporation"},
		{"5", "acme"},
	})

	var prev map[string]bool
	for _, th := range []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0} {
		e := newEngine(t, config.WithThreshold(th))
		res, err := e.Join(context.Background(), left, right)
		require.NoError(t, err)

		cur := make(map[string]bool)
		for _, p := range pairs(res.Matches) {
			assert.False(t, cur[p], "duplicate pair %s", p)
			cur[p] = true
			if prev != nil {
				assert.True(t, prev[p], "threshold %.1f produced %s missing at lower threshold", th, p)
			}
		}
		for _, m := range res.Matches {
			assert.GreaterOrEqual(t, m.Score, th)
		}
		prev = cur
	}
}

func TestJoinExclude(t *testing.T) {
	sameID := func(l, r model.Record) bool { return l.Value("id") == r.Value("id") }
	e := newEngine(t, config.WithThreshold(0.1), config.WithExclude(sameID))

	res, err := e.Join(context.Background(), demoTable("left"), demoTable("right"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Pair(1:2)", "Pair(2:1)"}, pairs(res.Matches))
	assert.Equal(t, int64(3), res.Stats.Excluded)
	assert.Equal(t, int64(2), res.Stats.Comparisons)
	assert.Equal(t, int64(5), res.Stats.Candidates)
}

func TestJoinNumbers(t *testing.T) {
	left := model.NewTable("left", []string{"id", "addr"}, [][]string{
		{"l1", "12 main street"},
		{"l2", "main street 12"},
	})
	right := model.NewTable("right", []string{"id", "addr"}, [][]string{
		{"r1", "14 main street"},
		{"r2", "12 main street"},
	})

	cfg, err := config.New(
		config.IDs("id", "id"),
		config.Fields("addr", "addr"),
		config.WithThreshold(0.5),
		config.WithNumbers(config.NumbersExact),
	)
	require.NoError(t, err)
	e, err := New(cfg)
	require.NoError(t, err)

	res, err := e.Join(context.Background(), left, right)
	require.NoError(t, err)

	got := make([]string, 0, len(res.Matches))
	for _, k := range res.Matches.Keys("id", "id") {
		got = append(got, k.String())
	}
	assert.Equal(t, []string{"Pair(l1:r2)", "Pair(l2:r2)"}, got)
}

func TestJoinParallelEqualsSequential(t *testing.T) {
	rows := make([][]string, 0, 60)
	for i := range 60 {
		rows = append(rows, []string{fmt.Sprint(i), fmt.Sprintf("customer %d %s", i%7, []string{"north", "south", "east", "west"}[i%4])})
	}
	left := model.NewTable("left", []string{"id", "name"}, rows)
	right := model.NewTable("right", []string{"id", "name"}, rows[:40])

	run := func(workers int) map[string]float64 {
		cfg, err := config.New(
			config.IDs("id", "id"),
			config.Fields("name", "name"),
			config.WithThreshold(0.6),
			config.WithWorkers(workers),
		)
		require.NoError(t, err)
		e, err := New(cfg)
		require.NoError(t, err)
		res, err := e.Join(context.Background(), left, right)
		require.NoError(t, err)

		out := make(map[string]float64, len(res.Matches))
		for i, k := range res.Matches.Keys("id", "id") {
			out[k.String()] = res.Matches[i].Score
		}
		return out
	}

	seq := run(1)
	par := run(4)
	assert.NotEmpty(t, seq)
	assert.Equal(t, seq, par)
}

func TestJoinParallelPreservesShardOrder(t *testing.T) {
	cfg, err := config.New(
		config.IDs("id", "id"),
		config.Fields("text", "text"),
		config.WithThreshold(0.1),
		config.WithWorkers(3),
	)
	require.NoError(t, err)
	e, err := New(cfg)
	require.NoError(t, err)

	res, err := e.Join(context.Background(), demoTable("left"), demoTable("right"))
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Pair(1:1)", "Pair(1:2)", "Pair(2:1)", "Pair(2:2)", "Pair(3:3)"},
		pairs(res.Matches),
	)
	assert.Equal(t, 3, res.Stats.Shards)
}

func TestJoinSchemaErrors(t *testing.T) {
	t.Run("left missing field", func(t *testing.T) {
		e := newEngine(t)
		left := model.NewTable("left", []string{"id", "name"}, [][]string{{"1", "x"}})

		_, err := e.Join(context.Background(), left, demoTable("right"))
		require.Error(t, err)

		var se *model.SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "left", se.Table)
		assert.Equal(t, 0, se.Row)
		assert.Equal(t, "1", se.ID)
		assert.Equal(t, "text", se.Field)
		assert.ErrorIs(t, err, model.ErrSchema)
	})

	t.Run("right missing id", func(t *testing.T) {
		e := newEngine(t)
		right := model.NewTable("right", []string{"key", "text"}, [][]string{{"1", "x"}})

		_, err := e.Join(context.Background(), demoTable("left"), right)
		var se *model.SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "right", se.Table)
		assert.Equal(t, "id", se.Field)
	})

	t.Run("short row", func(t *testing.T) {
		e := newEngine(t)
		left := model.NewTable("left", []string{"id", "text"}, [][]string{{"1", "x"}, {"2"}})

		_, err := e.Join(context.Background(), left, demoTable("right"))
		var se *model.SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 1, se.Row)
	})
}

func TestJoinDuplicateIDs(t *testing.T) {
	dup := model.NewTable("left", []string{"id", "text"}, [][]string{
		{"1", "hello"},
		{"1", "hello"},
	})

	t.Run("strict", func(t *testing.T) {
		e := newEngine(t, config.WithStrictIDs(true))

		_, err := e.Join(context.Background(), dup, demoTable("right"))
		var de *model.DuplicateIDError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "1", de.ID)
		assert.Equal(t, [2]int{0, 1}, de.Rows)
	})

	t.Run("lenient", func(t *testing.T) {
		e := newEngine(t, config.WithThreshold(0.1))

		res, err := e.Join(context.Background(), dup, demoTable("right"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Pair(1:1)", "Pair(1:2)"}, pairs(res.Matches))
		assert.Equal(t, int64(2), res.Stats.Matches)
	})
}

func TestJoinEmptyTables(t *testing.T) {
	e := newEngine(t)
	empty := model.NewTable("empty", []string{"id", "text"}, nil)

	res, err := e.Join(context.Background(), empty, demoTable("right"))
	require.NoError(t, err)
	assert.NotNil(t, res.Matches)
	assert.Empty(t, res.Matches)

	res, err = e.Join(context.Background(), demoTable("left"), empty)
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
}

func TestJoinCancelled(t *testing.T) {
	e := newEngine(t, config.WithThreshold(0.1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Join(ctx, demoTable("left"), demoTable("right"))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Matches)
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	cfg := &config.Config{}
	_, err = New(cfg)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

type recordingObserver struct {
	mu       sync.Mutex
	states   []State
	indexed  int
	shards   int
	progress int
}

func (o *recordingObserver) OnState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, s)
}

func (o *recordingObserver) OnIndex(time.Duration, blocking.Stats, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.indexed++
}

func (o *recordingObserver) OnProgress(int, int, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress++
}

func (o *recordingObserver) OnShard(int, Stats, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.shards++
}

func TestObserver(t *testing.T) {
	cfg, err := config.New(
		config.IDs("id", "id"),
		config.Fields("text", "text"),
		config.WithProgress(true, time.Hour),
		config.WithWorkers(2),
	)
	require.NoError(t, err)

	obs := &recordingObserver{}
	e, err := New(cfg, WithObserver(obs))
	require.NoError(t, err)

	_, err = e.Join(context.Background(), demoTable("left"), demoTable("right"))
	require.NoError(t, err)

	assert.Equal(t, []State{StateIndexing, StateScanning, StateDone}, obs.states)
	assert.Equal(t, 1, obs.indexed)
	assert.Equal(t, 2, obs.shards)
	// The first record always reports; the hour interval suppresses the rest.
	assert.Equal(t, 1, obs.progress)
}

func TestLargeBlockWarning(t *testing.T) {
	sharedTable := func(n int) model.Table {
		rows := make([][]string, n)
		for i := range rows {
			rows[i] = []string{fmt.Sprint(i + 1), fmt.Sprintf("acme %03d", i)}
		}
		return model.NewTable("right", []string{"id", "text"}, rows)
	}

	tests := []struct {
		name    string
		records int
		warn    bool
	}{
		{"Small", minLargeBlockRecords - 1, false},
		{"Large", 120, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

			cfg, err := config.New(config.IDs("id", "id"), config.Fields("text", "text"))
			require.NoError(t, err)
			e, err := New(cfg, WithLogger(logger))
			require.NoError(t, err)

			left := model.NewTable("left", []string{"id", "text"}, [][]string{{"1", "acme"}})
			_, err = e.Join(context.Background(), left, sharedTable(tt.records))
			require.NoError(t, err)

			if !tt.warn {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), "level=WARN")
			assert.Contains(t, buf.String(), "large block")
			assert.Contains(t, buf.String(), fmt.Sprintf("block=%d", tt.records))
			assert.Contains(t, buf.String(), fmt.Sprintf("records=%d", tt.records))
		})
	}
}

func TestCustomPipeline(t *testing.T) {
	cfg, err := config.New(config.IDs("id", "id"), config.Fields("text", "text"), config.WithThreshold(0.1))
	require.NoError(t, err)

	e, err := New(cfg, WithPipeline(compare.NewPipeline(compare.Fuzzy{})))
	require.NoError(t, err)

	res, err := e.Join(context.Background(), demoTable("left"), demoTable("right"))
	require.NoError(t, err)
	require.Len(t, res.Matches, 5)
	assert.Len(t, res.Matches[0].Trace, 1)
}

func TestShardBounds(t *testing.T) {
	tests := []struct {
		n, workers int
		want       [][2]int
	}{
		{0, 4, [][2]int{{0, 0}}},
		{3, 1, [][2]int{{0, 3}}},
		{3, 3, [][2]int{{0, 1}, {1, 2}, {2, 3}}},
		{3, 8, [][2]int{{0, 1}, {1, 2}, {2, 3}}},
		{10, 4, [][2]int{{0, 3}, {3, 6}, {6, 9}, {9, 10}}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.n, tt.workers), func(t *testing.T) {
			assert.Equal(t, tt.want, shardBounds(tt.n, tt.workers))
		})
	}
}

func TestFilterMultiples(t *testing.T) {
	schema := model.NewSchema("id")
	rec := func(id string) model.Record { return model.NewRecord(schema, []string{id}) }

	t.Run("no repeats", func(t *testing.T) {
		ms := model.MatchSet{{Left: rec("1"), Right: rec("a")}, {Left: rec("2"), Right: rec("b")}}
		out := FilterMultiples("id", ms)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("repeats", func(t *testing.T) {
		ms := model.MatchSet{
			{Left: rec("1"), Right: rec("a")},
			{Left: rec("2"), Right: rec("b")},
			{Left: rec("1"), Right: rec("c")},
		}
		out := FilterMultiples("id", ms)
		require.Len(t, out, 2)
		assert.Equal(t, "a", out[0].Right.Value("id"))
		assert.Equal(t, "c", out[1].Right.Value("id"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, FilterMultiples("id", nil))
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "indexing", StateIndexing.String())
	assert.Equal(t, "scanning", StateScanning.String())
	assert.Equal(t, "done", StateDone.String())
}
