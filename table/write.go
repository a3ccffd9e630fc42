package table

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/fuzzyjoin/codec"
	"github.com/hupe1980/fuzzyjoin/model"
)

// ErrNoMatches is returned by the writers for an empty match set.
var ErrNoMatches = errors.New("no matches")

// Format is an output format.
type Format int

const (
	FormatCSV Format = iota
	FormatJSONL
	FormatSQLite
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSONL:
		return "jsonl"
	case FormatSQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// FormatFor picks the output format and compression from the extension of
// name: ".csv", ".jsonl"/".ndjson" or ".db"/".sqlite", optionally followed by
// a compression extension. SQLite output cannot be compressed.
func FormatFor(name string) (Format, Compression, error) {
	comp, plain := DetectCompression(name)

	ext := strings.ToLower(path.Ext(plain))

	switch ext {
	case ".csv", "":
		return FormatCSV, comp, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, comp, nil
	case ".db", ".sqlite", ".sqlite3":
		if comp != CompressionNone {
			return 0, 0, fmt.Errorf("output %s: sqlite output cannot be compressed", name)
		}
		return FormatSQLite, comp, nil
	default:
		return 0, 0, fmt.Errorf("output %s: unsupported extension %q", name, ext)
	}
}

// WriteOptions configures the match writers.
type WriteOptions struct {
	// Codec encodes JSON values (default: codec.Default).
	Codec codec.Codec
	// Trace includes the per-stage trace in JSON lines and SQLite output.
	Trace bool
	// SQLiteTable is the SQLite table name (default: "matches").
	SQLiteTable string
}

func writeOptions(optFns []func(*WriteOptions)) WriteOptions {
	opts := WriteOptions{Codec: codec.Default, SQLiteTable: "matches"}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	return opts
}

// FormatScore renders a score with the shortest exact representation.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// Header returns the CSV header for matches: "score", then the left table
// fields, then the right table fields.
func Header(matches model.MatchSet) []string {
	if len(matches) == 0 {
		return nil
	}
	left, right := matches[0].Left.Fields(), matches[0].Right.Fields()
	header := make([]string, 0, 1+len(left)+len(right))
	header = append(header, "score")
	header = append(header, left...)
	return append(header, right...)
}

// WriteCSV writes matches in order with a header row.
func WriteCSV(w io.Writer, matches model.MatchSet) error {
	if len(matches) == 0 {
		return ErrNoMatches
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header(matches)); err != nil {
		return err
	}

	var row []string
	for _, m := range matches {
		row = row[:0]
		row = append(row, FormatScore(m.Score))
		row = append(row, m.Left.Values()...)
		row = append(row, m.Right.Values()...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonMatch struct {
	Score float64             `json:"score"`
	Left  map[string]string   `json:"left"`
	Right map[string]string   `json:"right"`
	Trace []model.StageResult `json:"trace,omitempty"`
}

// WriteJSONL writes one JSON object per match.
func WriteJSONL(w io.Writer, matches model.MatchSet, optFns ...func(*WriteOptions)) error {
	if len(matches) == 0 {
		return ErrNoMatches
	}
	opts := writeOptions(optFns)

	bw := bufio.NewWriter(w)
	var line []byte
	for _, m := range matches {
		rec := jsonMatch{Score: m.Score, Left: m.Left.Map(), Right: m.Right.Map()}
		if opts.Trace {
			rec.Trace = m.Trace
		}
		var err error
		if line, err = codec.AppendLine(opts.Codec, line[:0], rec); err != nil {
			return err
		}
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSQLite replaces the database at dbPath with one holding matches.
// Left and right fields become columns prefixed with "left_" and "right_".
func WriteSQLite(ctx context.Context, dbPath string, matches model.MatchSet, optFns ...func(*WriteOptions)) error {
	if len(matches) == 0 {
		return ErrNoMatches
	}
	opts := writeOptions(optFns)

	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	cols := []string{"score"}
	defs := []string{quoteIdent("score") + " REAL"}
	for _, f := range matches[0].Left.Fields() {
		cols = append(cols, "left_"+f)
	}
	for _, f := range matches[0].Right.Fields() {
		cols = append(cols, "right_"+f)
	}
	cols = uniqueColumns(cols)
	for _, c := range cols[1:] {
		defs = append(defs, quoteIdent(c)+" TEXT")
	}
	if opts.Trace {
		cols = append(cols, "trace")
		cols = uniqueColumns(cols)
		defs = append(defs, quoteIdent(cols[len(cols)-1])+" TEXT")
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	tbl := quoteIdent(opts.SQLiteTable)

	if _, err := db.ExecContext(ctx, `CREATE TABLE `+tbl+` (`+strings.Join(defs, ",")+`)`); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+tbl+` (`+strings.Join(quoted, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, 0, len(cols))
	for _, m := range matches {
		args = args[:0]
		args = append(args, m.Score)
		for _, v := range m.Left.Values() {
			args = append(args, v)
		}
		for _, v := range m.Right.Values() {
			args = append(args, v)
		}
		if opts.Trace {
			trace, err := codec.EncodeString(opts.Codec, m.Trace)
			if err != nil {
				return err
			}
			args = append(args, trace)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// uniqueColumns suffixes repeated column names with _2, _3 and so on.
func uniqueColumns(cols []string) []string {
	seen := make(map[string]int, len(cols))
	for i, c := range cols {
		seen[c]++
		if n := seen[c]; n > 1 {
			name := fmt.Sprintf("%s_%d", c, n)
			for seen[name] > 0 {
				n++
				name = fmt.Sprintf("%s_%d", c, n)
			}
			seen[name]++
			cols[i] = name
		}
	}
	return cols
}

// quoteIdent quotes an SQL identifier, doubling embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
