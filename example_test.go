package fuzzyjoin_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/fuzzyjoin"
	"github.com/hupe1980/fuzzyjoin/blobstore"
	"github.com/hupe1980/fuzzyjoin/collate"
	"github.com/hupe1980/fuzzyjoin/table"
)

func demo(name string) fuzzyjoin.Table {
	return fuzzyjoin.NewTable(name, []string{"id", "text"}, [][]string{
		{"1", "a hello world"},
		{"2", "hella"},
		{"3", "zzzz"},
	})
}

// Example_join demonstrates a join with the functional options API.
func Example_join() {
	joiner, err := fuzzyjoin.New(
		fuzzyjoin.WithIDs("id", "id"),
		fuzzyjoin.WithFields("text", "text"),
		fuzzyjoin.WithThreshold(0.8),
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := joiner.Join(context.Background(), demo("left"), demo("right"))
	if err != nil {
		log.Fatal(err)
	}

	for _, m := range res.Matches {
		fmt.Println(m.Left.Value("id"), m.Right.Value("id"), table.FormatScore(m.Score))
	}
	// Output:
	// 1 1 1
	// 2 2 1
	// 3 3 1
}

// Example_builder demonstrates the fluent builder and FilterMultiples.
func Example_builder() {
	joiner, err := fuzzyjoin.On("text", "text").
		IDs("id", "id").
		Threshold(0.1).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	res, err := joiner.Join(context.Background(), demo("left"), demo("right"))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("matches:", len(res.Matches))
	fmt.Println("multiples:", len(joiner.Multiples(res.Matches)))
	// Output:
	// matches: 5
	// multiples: 4
}

// Example_joinFiles demonstrates loading CSV tables from a blob store.
func Example_joinFiles() {
	ctx := context.Background()

	store := blobstore.NewMemoryStore()
	_ = store.Put(ctx, "left.csv", []byte("id,name\n1,Acme Corp\n2,Globex\n"))
	_ = store.Put(ctx, "right.csv", []byte("id,name\nA,ACME corp.\nB,Initech\n"))

	joiner, err := fuzzyjoin.New(
		fuzzyjoin.WithIDs("id", "id"),
		fuzzyjoin.WithFields("name", "name"),
		fuzzyjoin.WithCollate(collate.Lower),
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := joiner.JoinFiles(ctx, store, "left.csv", "right.csv")
	if err != nil {
		log.Fatal(err)
	}

	for _, m := range res.Matches {
		fmt.Println(m.Left.Value("name"), "=>", m.Right.Value("name"))
	}
	// Output: Acme Corp => ACME corp.
}
