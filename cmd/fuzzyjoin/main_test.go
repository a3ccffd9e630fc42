package main

import (
	"bytes"
	"context"
	"database/sql"
	"flag"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fuzzyjoin/blobstore"
	"github.com/hupe1980/fuzzyjoin/codec"
	"github.com/hupe1980/fuzzyjoin/model"
	"github.com/hupe1980/fuzzyjoin/table"
)

const demoCSV = "id,text\n1,a hello world\n2,hella\n3,zzzz\n"

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-env", filepath.Join(t.TempDir(), "missing.env")}, args...)
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func demoFiles(t *testing.T) (dir, left, right string) {
	t.Helper()
	dir = t.TempDir()
	return dir, writeFile(t, dir, "left.csv", demoCSV), writeFile(t, dir, "right.csv", demoCSV)
}

func TestRun(t *testing.T) {
	dir, left, right := demoFiles(t)
	out := filepath.Join(dir, "out.csv")

	res := runCLI(t, "", "-ids", "id,id", "-fields", "text,text", "-threshold", "0.8", "-o", out, left, right)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "[Info] Wrote: "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"score,id,text,id,text\n"+
			"1,1,a hello world,1,a hello world\n"+
			"1,2,hella,2,hella\n"+
			"1,3,zzzz,3,zzzz\n",
		string(data),
	)
}

func TestRun_SingleFieldNames(t *testing.T) {
	dir, left, right := demoFiles(t)
	out := filepath.Join(dir, "out.csv")

	res := runCLI(t, "", "-ids", "id", "-fields", "text", "-o", out, left, right)
	require.Equal(t, exitOK, res.code, res.stderr)
}

func TestRun_Overwrite(t *testing.T) {
	dir, left, right := demoFiles(t)
	out := writeFile(t, dir, "out.csv", "old")
	args := []string{"-ids", "id,id", "-fields", "text,text", "-o", out, left, right}

	tests := []struct {
		name     string
		stdin    string
		extra    []string
		wantCode int
		wantOld  bool
	}{
		{"declined", "n\n", nil, exitError, true},
		{"empty answer", "\n", nil, exitError, true},
		{"no input", "", nil, exitError, true},
		{"confirmed", "y\n", nil, exitOK, false},
		{"flag", "", []string{"-y"}, exitOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(out, []byte("old"), 0o600))

			res := runCLI(t, tt.stdin, append(tt.extra, args...)...)
			assert.Equal(t, tt.wantCode, res.code, res.stderr)

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOld, string(data) == "old")
			if tt.extra == nil {
				assert.Contains(t, res.stderr, "already exists. Overwrite it? [y|N]")
			}
		})
	}
}

func TestRun_MultiplesJSONL(t *testing.T) {
	dir, left, right := demoFiles(t)
	out := filepath.Join(dir, "out.jsonl")

	res := runCLI(t, "", "-ids", "id,id", "-fields", "text,text", "-threshold", "0.1", "-multiples", "-trace", "-codec", "json", "-o", out, left, right)
	require.Equal(t, exitOK, res.code, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"trace"`)
}

func TestRun_CompressedInputAndOutput(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := blobstore.NewLocalStore(dir)

	w, err := store.Create(ctx, "left.csv.zst")
	require.NoError(t, err)
	cw, err := table.Compress(w, table.CompressionZstd)
	require.NoError(t, err)
	_, err = io.WriteString(cw, demoCSV)
	require.NoError(t, err)
	require.NoError(t, cw.Close())
	require.NoError(t, w.Close())

	right := writeFile(t, dir, "right.csv", demoCSV)
	out := filepath.Join(dir, "out.csv.gz")

	res := runCLI(t, "", "-ids", "id,id", "-fields", "text,text", "-o", out, filepath.Join(dir, "left.csv.zst"), right)
	require.Equal(t, exitOK, res.code, res.stderr)

	tbl, err := table.Load(ctx, store, "out.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, "out", tbl.Name)
	assert.Len(t, tbl.Records, 3)
}

func TestRun_SQLite(t *testing.T) {
	dir, left, right := demoFiles(t)
	out := filepath.Join(dir, "out.db")

	res := runCLI(t, "", "-ids", "id,id", "-fields", "text,text", "-threshold", "0.1", "-trace", "-o", out, left, right)
	require.Equal(t, exitOK, res.code, res.stderr)

	db, err := sql.Open("sqlite", out)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM matches").Scan(&n))
	assert.Equal(t, 5, n)
}

func TestRun_NoMatches(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.csv", "id,text\n1,abcdef\n")
	right := writeFile(t, dir, "right.csv", "id,text\n1,uvwxyz\n")
	out := filepath.Join(dir, "out.csv")

	res := runCLI(t, "", "-ids", "id,id", "-fields", "text,text", "-o", out, left, right)
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "No matches found")
	assert.NoFileExists(t, out)
}

func TestRun_Metrics(t *testing.T) {
	dir, left, right := demoFiles(t)
	metrics := filepath.Join(dir, "fuzzyjoin.prom")

	res := runCLI(t, "", "-ids", "id,id", "-fields", "text,text", "-o", filepath.Join(dir, "out.csv"), "-metrics", metrics, left, right)
	require.Equal(t, exitOK, res.code, res.stderr)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fuzzyjoin_joins_total{result="success"} 1`)
}

func TestRun_Plugin(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.csv", "id,text\n1,HELLA\n")
	right := writeFile(t, dir, "right.csv", "id,text\n1,hella\n")
	script := writeFile(t, dir, "clitest.go", "package clitest\n\nimport \"strings\"\n\nfunc Collate(s string) string { return strings.ToUpper(s) }\n")
	out := filepath.Join(dir, "out.csv")

	res := runCLI(t, "", "-ids", "id,id", "-fields", "text,text", "-threshold", "0.9",
		"-plugin", script, "-collate", "clitest.Collate", "-o", out, left, right)
	require.Equal(t, exitOK, res.code, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,1,HELLA,1,hella")
}

func TestWriteMatches_FailureKeepsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	out := writeFile(t, dir, "out.jsonl", "previous\n")

	tbl := model.NewTable("t", []string{"id", "text"}, [][]string{{"1", "acme"}})
	matches := model.MatchSet{
		{Score: 1, Left: tbl.Records[0], Right: tbl.Records[0]},
		{Score: math.NaN(), Left: tbl.Records[0], Right: tbl.Records[0]},
	}

	_, err := writeMatches(context.Background(), OutputSettings{Path: out, Yes: true}, matches, codec.Default, strings.NewReader(""), io.Discard)
	require.Error(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "partial output must not be left behind")
}

func TestRun_Errors(t *testing.T) {
	_, left, right := demoFiles(t)
	base := []string{"-ids", "id,id", "-fields", "text,text"}

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"missing args", []string{left}, exitUsage, "Usage"},
		{"unknown flag", []string{"-nope", left, right}, exitUsage, "flag provided but not defined"},
		{"missing ids", []string{"-fields", "text,text", left, right}, exitUsage, "left id"},
		{"bad ids", []string{"-ids", "a,b,c", "-fields", "text,text", left, right}, exitUsage, "-ids"},
		{"threshold", append(base, "-threshold", "2", left, right), exitUsage, "threshold"},
		{"two policies", append(base, "-numbers-exact", "-numbers-subset", left, right), exitUsage, "numbers"},
		{"unknown collate", append(base, "-collate", "nope", left, right), exitUsage, "nope"},
		{"unknown codec", append(base, "-codec", "nope", left, right), exitUsage, "codec"},
		{"bad output", append(base, "-o", filepath.Join(t.TempDir(), "out.txt"), left, right), exitUsage, "unsupported extension"},
		{"log level", append(base, "-log-level", "loud", left, right), exitUsage, "log level"},
		{"log format", append(base, "-log-format", "xml", left, right), exitUsage, "log format"},
		{"schema", []string{"-ids", "id,id", "-fields", "name,text", left, right}, exitUsage, "name"},
		{"missing table", append(base, filepath.Join(t.TempDir(), "nope.csv"), right), exitError, "nope.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)
			assert.Equal(t, tt.wantCode, res.code, res.stderr)
			assert.Contains(t, res.stderr, tt.wantErr)
		})
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "fuzzyjoin.toml", `
[join]
left_id = "id"
right_id = "rid"
left_field = "name"
right_field = "company"
threshold = 0.9
numbers = "exact"
progress = "2s"
plugins = ["a.go"]

[output]
path = "out.jsonl"
multiples = true

[log]
level = "debug"
`)
	envFile := writeFile(t, dir, "test.env", "FUZZYJOIN_NGRAM=4\n")
	t.Cleanup(func() { _ = os.Unsetenv("FUZZYJOIN_NGRAM") })

	t.Setenv("FUZZYJOIN_THRESHOLD", "0.75")
	t.Setenv("FUZZYJOIN_WORKERS", "3")
	t.Setenv("FUZZYJOIN_COLLATE", "fold")

	fs, f := newFlagSet(io.Discard)
	require.NoError(t, fs.Parse([]string{"-config", cfgFile, "-env", envFile, "-threshold", "0.6", "-o", "x.csv", "-plugin", "b.go", "l.csv", "r.csv"}))

	s, err := loadSettings(fs, f)
	require.NoError(t, err)

	assert.Equal(t, "id", s.Join.LeftID)
	assert.Equal(t, "rid", s.Join.RightID)
	assert.Equal(t, "name", s.Join.LeftField)
	assert.Equal(t, "company", s.Join.RightField)
	assert.Equal(t, 0.6, s.Join.Threshold)
	assert.Equal(t, 4, s.Join.NGram)
	assert.Equal(t, 3, s.Join.Workers)
	assert.Equal(t, "fold", s.Join.Collate)
	assert.Equal(t, "exact", s.Join.Numbers)
	assert.Equal(t, "2s", s.Join.Progress)
	assert.Equal(t, []string{"a.go", "b.go"}, s.Join.Plugins)
	assert.Equal(t, "x.csv", s.Output.Path)
	assert.True(t, s.Output.Multiples)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)

	opts, err := s.configOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
}

func TestLoadEnvErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FUZZYJOIN_THRESHOLD", "high"},
		{"FUZZYJOIN_WORKERS", "many"},
		{"FUZZYJOIN_STRICT_IDS", "maybe"},
		{"FUZZYJOIN_PROGRESS", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := defaultSettings()
			lookup := func(k string) (string, bool) {
				if k == tt.key {
					return tt.value, true
				}
				return "", false
			}
			err := s.loadEnv(lookup)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestDefaultFlags(t *testing.T) {
	fs, _ := newFlagSet(io.Discard)

	tests := map[string]string{
		"threshold": "0.7",
		"ngram":     "3",
		"o":         "matches.csv",
		"collate":   "default",
		"exclude":   "none",
		"distance":  "levenshtein",
		"workers":   "1",
	}
	for name, want := range tests {
		fl := fs.Lookup(name)
		require.NotNil(t, fl, name)
		assert.Equal(t, want, fl.DefValue, name)
	}

	assert.Equal(t, flag.ContinueOnError, fs.ErrorHandling())
}

func TestPair(t *testing.T) {
	tests := []struct {
		in          string
		left, right string
		wantErr     bool
	}{
		{"id,rid", "id", "rid", false},
		{"id , rid", "id", "rid", false},
		{"id", "id", "id", false},
		{"id,", "", "", true},
		{",rid", "", "", true},
		{"a,b,c", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			left, right, err := pair(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.left, left)
			assert.Equal(t, tt.right, right)
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, confirm(strings.NewReader(tt.in), io.Discard, "? "))
		})
	}
}
