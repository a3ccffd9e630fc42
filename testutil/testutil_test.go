package testutil

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/distance"
	"github.com/hupe1980/fuzzyjoin/engine"
	"github.com/hupe1980/fuzzyjoin/model"
)

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(4711)
	b := NewRNG(4711)

	assert.Equal(t, a.Table("t", 20), b.Table("t", 20))

	a.Reset()
	first := a.Name()
	a.Reset()
	assert.Equal(t, first, a.Name())
	assert.Equal(t, int64(4711), a.Seed())
}

func TestTable(t *testing.T) {
	rng := NewRNG(1)
	tbl := rng.Table("left", 10)

	assert.Equal(t, "left", tbl.Name)
	assert.Equal(t, []string{"id", "name", "address"}, tbl.Schema.Names())
	require.Len(t, tbl.Records, 10)
	assert.Equal(t, "left-0", tbl.Records[0].Value("id"))
	assert.Contains(t, tbl.Records[0].Value("name"), " ")
}

func TestTypo(t *testing.T) {
	rng := NewRNG(42)
	for range 100 {
		s := rng.Name()
		typo := rng.Typo(s)
		assert.LessOrEqual(t, distance.OSA(s, typo), 1, "%q -> %q", s, typo)
	}
	assert.Equal(t, "ax", rng.Typo("a"))
}

func TestVariants(t *testing.T) {
	rng := NewRNG(7)
	src := rng.Table("left", 30)

	same := rng.Variants("right", src, 0)
	for i, rec := range same.Records {
		assert.Equal(t, src.Records[i].Value("name"), rec.Value("name"))
		assert.Equal(t, "right-"+strconv.Itoa(i), rec.Value("id"))
	}
}

func TestRecall(t *testing.T) {
	k := func(l, r string) model.PairKey { return model.PairKey{Left: l, Right: r} }

	tests := []struct {
		name   string
		approx []model.PairKey
		exact  []model.PairKey
		want   float64
	}{
		{"empty exact", nil, nil, 1},
		{"all found", []model.PairKey{k("1", "1"), k("2", "2")}, []model.PairKey{k("1", "1")}, 1},
		{"half", []model.PairKey{k("1", "1")}, []model.PairKey{k("1", "1"), k("2", "2")}, 0.5},
		{"none", nil, []model.PairKey{k("1", "1")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recall(tt.approx, tt.exact))
		})
	}

	assert.True(t, Subset(nil, []model.PairKey{k("1", "1")}))
	assert.False(t, Subset([]model.PairKey{k("1", "2")}, []model.PairKey{k("1", "1")}))
}

func TestBlockedJoinAgainstExactJoin(t *testing.T) {
	rng := NewRNG(4711)
	left := rng.Table("left", 50)
	right := rng.Variants("right", left, 0.5)

	for _, th := range []float64{0.5, 0.7, 0.9} {
		cfg, err := config.New(
			config.IDs("id", "id"),
			config.Fields("name", "name"),
			config.WithThreshold(th),
		)
		require.NoError(t, err)

		exact, err := ExactJoin(left, right, cfg)
		require.NoError(t, err)

		e, err := engine.New(cfg)
		require.NoError(t, err)
		res, err := e.Join(context.Background(), left, right)
		require.NoError(t, err)

		got := res.Matches.Keys("id", "id")
		want := exact.Keys("id", "id")
		assert.True(t, Subset(got, want), "threshold %.1f", th)
		assert.GreaterOrEqual(t, Recall(got, want), 0.8, "threshold %.1f", th)
		assert.NotEmpty(t, want)
	}
}
