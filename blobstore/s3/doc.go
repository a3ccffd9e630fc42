// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "joins/")
//
//	left, err := table.Load(ctx, store, "customers.csv.gz", nil)
//
// # Features
//
//   - Range reads for streaming large tables
//   - Multipart uploads for match outputs
//   - Automatic pagination for listing
package s3
