package main

import (
	"context"
	"fmt"
	"path"

	"github.com/hupe1980/fuzzyjoin/blobstore"
	"github.com/hupe1980/fuzzyjoin/blobstore/minio"
	"github.com/hupe1980/fuzzyjoin/blobstore/s3"
)

// openStore resolves loc to a store and the blob name within it.
func openStore(ctx context.Context, loc blobstore.Location) (blobstore.BlobStore, string, error) {
	switch loc.Scheme {
	case blobstore.SchemeFile:
		return blobstore.NewLocalStore(loc.Dir()), loc.Name(), nil
	case blobstore.SchemeS3:
		store, err := s3.NewDefault(ctx, loc.Bucket, path.Dir(loc.Key))
		if err != nil {
			return nil, "", fmt.Errorf("s3 store %s: %w", loc, err)
		}
		return store, path.Base(loc.Key), nil
	case blobstore.SchemeMinio:
		store, err := minio.NewFromEnv(loc.Endpoint, loc.Bucket, path.Dir(loc.Key))
		if err != nil {
			return nil, "", fmt.Errorf("minio store %s: %w", loc, err)
		}
		return store, path.Base(loc.Key), nil
	default:
		return nil, "", fmt.Errorf("unsupported scheme %q", loc.Scheme)
	}
}
