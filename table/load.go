package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/fuzzyjoin/blobstore"
	"github.com/hupe1980/fuzzyjoin/model"
)

// LoadError reports a failure to read a table.
// Line is 0 when the failure is not tied to a line.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrNoHeader is returned for an input without a header row.
var ErrNoHeader = errors.New("missing header row")

// Options configures table reading.
type Options struct {
	// Comma is the field delimiter (default ',').
	Comma rune
	// Compression overrides detection from the file extension.
	Compression *Compression
	// TrimLeadingSpace ignores leading white space in fields.
	TrimLeadingSpace bool
}

// DefaultOptions are the reading defaults.
var DefaultOptions = Options{Comma: ','}

// Load reads the CSV table name from store. The table is named after the
// base name of name without extensions.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(*Options)) (model.Table, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	comp, plain := DetectCompression(name)
	if opts.Compression != nil {
		comp = *opts.Compression
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return model.Table{}, &LoadError{Source: name, Err: err}
	}
	defer func() { _ = blob.Close() }()

	raw, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return model.Table{}, &LoadError{Source: name, Err: err}
	}
	defer func() { _ = raw.Close() }()

	r, err := Decompress(raw, comp)
	if err != nil {
		return model.Table{}, &LoadError{Source: name, Err: fmt.Errorf("%s: %w", comp, err)}
	}
	defer func() { _ = r.Close() }()

	tbl, err := read(r, tableName(plain), opts)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Source = name
		}
		return model.Table{}, err
	}
	return tbl, nil
}

// LoadAll loads the named tables concurrently and returns them in order.
func LoadAll(ctx context.Context, store blobstore.BlobStore, names []string, optFns ...func(*Options)) ([]model.Table, error) {
	tables := make([]model.Table, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			tbl, err := Load(gctx, store, name, optFns...)
			if err != nil {
				return err
			}
			tables[i] = tbl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Read parses an uncompressed CSV table with a header row from r.
func Read(r io.Reader, name string, optFns ...func(*Options)) (model.Table, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return read(r, name, opts)
}

func read(r io.Reader, name string, opts Options) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = opts.TrimLeadingSpace
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.Table{}, &LoadError{Source: name, Err: ErrNoHeader}
	}
	if err != nil {
		return model.Table{}, parseError(name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Table{}, parseError(name, err)
		}
		rows = append(rows, rec)
	}

	return model.NewTable(name, header, rows), nil
}

func parseError(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &LoadError{Source: source, Line: pe.Line, Err: pe.Err}
	}
	return &LoadError{Source: source, Err: err}
}

func tableName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
