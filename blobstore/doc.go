// Package blobstore provides storage abstraction for input tables and match
// outputs.
//
// BlobStore is the interface for reading and writing whole blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Locations are written as a path, "s3://bucket/key" or
// "minio://endpoint/bucket/key" and parsed with ParseLocation.
package blobstore
