// Package core defines the storage contract for season archives. A
// season's artifacts (the JSON snapshot and its CSV exports) are written
// once when the season closes and addressed as seasons/<year>/<artifact>;
// drivers enforce that key schema and the write-once discipline.
package core

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Driver identifies a concrete archive storage backend.
type Driver string

const (
	// DriverFilesystem stores seasons under a local directory (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 targets an S3 / MinIO compatible endpoint.
	DriverS3 Driver = "s3"
	// DriverMemory keeps seasons in process memory (tests).
	DriverMemory Driver = "memory"
)

// keyPrefix roots every archive key.
const keyPrefix = "seasons"

// SeasonKey builds the canonical key for one artifact of a season.
func SeasonKey(year int, artifact string) string {
	return fmt.Sprintf("%s/%d/%s", keyPrefix, year, artifact)
}

// ParseKey splits an archive key into its season year and artifact name.
// Keys must have exactly the shape seasons/<year>/<artifact> with a
// positive year and a flat, non-empty artifact name.
func ParseKey(key string) (year int, artifact string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != keyPrefix {
		return 0, "", fmt.Errorf("archive key %q: want %s/<year>/<artifact>", key, keyPrefix)
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil || year < 1 {
		return 0, "", fmt.Errorf("archive key %q: bad season year %q", key, parts[1])
	}
	artifact = parts[2]
	if artifact == "" || artifact == "." || artifact == ".." {
		return 0, "", fmt.Errorf("archive key %q: bad artifact name", key)
	}
	return year, artifact, nil
}

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // user metadata (small, flat key-value)
}

// Info describes a stored season artifact.
type Info struct {
	Key          string            `json:"key"`
	Season       int               `json:"season"`
	Artifact     string            `json:"artifact"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the interface implemented by archive storage backends. Keys
// must satisfy ParseKey; Put fails when the key already exists, so a
// season can be archived exactly once.
type Store interface {
	// Put stores a new artifact at key. MUST fail if the key exists.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get retrieves the artifact contents and metadata.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only.
	Head(ctx context.Context, key string) (Info, error)
	// Delete removes an artifact. Returns (false, nil) if not found.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns the artifacts archived for a season, key ascending.
	List(ctx context.Context, year int) ([]Info, error)
	// Driver returns the configured backend driver string.
	Driver() Driver
}
