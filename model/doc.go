// Package model defines core types used throughout fuzzyjoin.
//
// # Table Types
//
//   - Schema: Ordered field names shared by every record of a table
//   - Record: Ordered mapping from field name to string value
//   - Table: Named, ordered sequence of records
//
// # Join Types
//
//   - StageResult: Outcome of a single comparison stage
//   - Match: Accepted pair with score and stage trace
//   - MatchSet: Matches in discovery order
//   - PairKey: (left id, right id) identity of a match
//
// # Building Tables
//
//	tbl := model.NewTable("people", []string{"id", "name"}, [][]string{
//	    {"1", "Smith, John"},
//	    {"2", "Jane Doe"},
//	})
package model
