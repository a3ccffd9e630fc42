package blobstore

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Scheme identifies the backend of a Location.
type Scheme string

const (
	SchemeFile  Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeMinio Scheme = "minio"
)

// Location is a parsed blob address.
type Location struct {
	Scheme Scheme
	// Endpoint is the MinIO host[:port]; empty for other schemes.
	Endpoint string
	// Bucket is empty for local files.
	Bucket string
	// Key is the object key or, for local files, the file path.
	Key string
}

// ParseLocation parses a local path, "s3://bucket/key" or
// "minio://endpoint/bucket/key".
func ParseLocation(raw string) (Location, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		if raw == "" {
			return Location{}, fmt.Errorf("empty location")
		}
		return Location{Scheme: SchemeFile, Key: raw}, nil
	}

	switch Scheme(scheme) {
	case SchemeFile:
		if rest == "" {
			return Location{}, fmt.Errorf("location %q: missing path", raw)
		}
		return Location{Scheme: SchemeFile, Key: rest}, nil
	case SchemeS3:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("location %q: want s3://bucket/key", raw)
		}
		return Location{Scheme: SchemeS3, Bucket: bucket, Key: key}, nil
	case SchemeMinio:
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return Location{}, fmt.Errorf("location %q: want minio://endpoint/bucket/key", raw)
		}
		return Location{Scheme: SchemeMinio, Endpoint: parts[0], Bucket: parts[1], Key: parts[2]}, nil
	default:
		return Location{}, fmt.Errorf("location %q: unsupported scheme %q", raw, scheme)
	}
}

// Name returns the blob name within its store.
func (l Location) Name() string {
	if l.Scheme == SchemeFile {
		return filepath.Base(l.Key)
	}
	return l.Key
}

// Dir returns the directory of a local file location.
func (l Location) Dir() string {
	return filepath.Dir(l.Key)
}

// Ext returns the lower-cased extension of the key, such as ".csv" or ".gz".
func (l Location) Ext() string {
	return strings.ToLower(filepath.Ext(l.Key))
}

func (l Location) String() string {
	switch l.Scheme {
	case SchemeS3:
		return "s3://" + l.Bucket + "/" + l.Key
	case SchemeMinio:
		return "minio://" + l.Endpoint + "/" + l.Bucket + "/" + l.Key
	default:
		return l.Key
	}
}
