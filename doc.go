// Package fuzzyjoin approximately joins two tables on a pair of text fields.
//
// A blocking index over the right table's n-grams limits comparisons to
// pairs that share at least one n-gram. Each candidate pair then runs a
// comparison pipeline (raw equality, collated equality, optional numeric
// checks, edit-distance scoring) that stops at the first failing stage.
//
// # Quick Start
//
//	joiner, err := fuzzyjoin.New(
//	    fuzzyjoin.WithIDs("id", "id"),
//	    fuzzyjoin.WithFields("name", "name"),
//	    fuzzyjoin.WithThreshold(0.8),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := joiner.Join(ctx, left, right)
//	for _, m := range res.Matches {
//	    fmt.Println(m.Score, m.Left.Value("name"), m.Right.Value("name"))
//	}
//
// # Fluent Builder
//
//	joiner, err := fuzzyjoin.On("name", "company").
//	    IDs("id", "crm_id").
//	    Threshold(0.85).
//	    NumbersExact().
//	    Collate(collate.Fold).
//	    Workers(4).
//	    Build()
//
// # Loading and Writing Tables
//
// The table package reads CSV (optionally gzip, zstd or lz4 compressed) from
// any blobstore.BlobStore and writes matches as CSV, JSON lines or SQLite.
// JoinFiles combines loading and joining:
//
//	res, err := joiner.JoinFiles(ctx, blobstore.NewLocalStore("."), "left.csv", "right.csv.gz")
//
// # One-to-many Matches
//
// FilterMultiples keeps the matches whose left identifier matched more than
// one right record.
package fuzzyjoin
