// Package table loads CSV tables from a blob store and writes match sets.
//
// Inputs may be compressed; the codec is chosen from the file extension
// (".gz", ".zst" or ".lz4"). Matches are written as CSV, JSON lines or a
// SQLite database.
package table
