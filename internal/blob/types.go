// Package blob re-exports the archive blob abstractions for stable
// imports across the rest of the tree.
package blob

import (
	"gardencore/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes a stored season artifact.
	Info = core.Info
	// Store is the interface for archive storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// SeasonKey builds the canonical seasons/<year>/<artifact> key.
func SeasonKey(year int, artifact string) string { return core.SeasonKey(year, artifact) }

// ParseKey splits an archive key into its season year and artifact name.
func ParseKey(key string) (year int, artifact string, err error) { return core.ParseKey(key) }
