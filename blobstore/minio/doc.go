// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. This package uses the
// MinIO Go client, which also works against Ceph, SeaweedFS and Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "joins/")
//	left, err := table.Load(ctx, store, "customers.csv", nil)
//
// NewFromEnv builds the client from MINIO_ACCESS_KEY, MINIO_SECRET_KEY and
// MINIO_SECURE.
package minio
