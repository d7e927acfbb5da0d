// Package fs stores season archives under a local directory. Each season
// gets its own directory, root/seasons/<year>/, holding the artifact files
// plus a manifest.json that records content type, digest, and metadata for
// every artifact archived that year.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gardencore/internal/blob/core"
)

// manifestName is reserved; artifacts may not use it.
const manifestName = "manifest.json"

// Store implements core.Store on the local filesystem. Writes within one
// season are serialized by the caller (the archive worker); the manifest
// is not safe for concurrent writers across processes.
type Store struct {
	root string
}

// New returns a filesystem-backed archive store rooted at path, creating
// it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./archivedata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

type manifestEntry struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ETag        string            `json:"etag"`
	Size        int64             `json:"size"`
	ArchivedAt  time.Time         `json:"archived_at"`
}

type manifest map[string]manifestEntry

func (s *Store) seasonDir(year int) string {
	return filepath.Join(s.root, "seasons", strconv.Itoa(year))
}

func (s *Store) paths(key string) (year int, name, dataPath string, err error) {
	year, name, err = core.ParseKey(key)
	if err != nil {
		return 0, "", "", err
	}
	if name == manifestName {
		return 0, "", "", fmt.Errorf("artifact name %q is reserved", manifestName)
	}
	return year, name, filepath.Join(s.seasonDir(year), name), nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	year, name, dataPath, err := s.paths(key)
	if err != nil {
		return core.Info{}, err
	}
	dir := s.seasonDir(year)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return core.Info{}, err
	}
	man, err := s.readManifest(year)
	if err != nil {
		return core.Info{}, err
	}
	if _, exists := man[name]; exists {
		return core.Info{}, fmt.Errorf("artifact %s already archived", key)
	}
	// Stream through a temp file to compute the digest and size, then
	// move atomically into place before the manifest records it.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return core.Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	h := sha256.New()
	size, copyErr := io.Copy(io.MultiWriter(tmp, h), r)
	if copyErr != nil {
		_ = tmp.Close()
		return core.Info{}, copyErr
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return core.Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return core.Info{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return core.Info{}, err
	}
	now := time.Now().UTC()
	etag := hex.EncodeToString(h.Sum(nil))
	man[name] = manifestEntry{ContentType: opts.ContentType, Metadata: cloneMetadata(opts.Metadata), ETag: etag, Size: size, ArchivedAt: now}
	if err := s.writeManifest(year, man); err != nil {
		return core.Info{}, err
	}
	return s.infoFor(year, name, man[name]), nil
}

func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	year, name, dataPath, err := s.paths(key)
	if err != nil {
		return core.Info{}, nil, err
	}
	man, err := s.readManifest(year)
	if err != nil {
		return core.Info{}, nil, err
	}
	entry, ok := man[name]
	if !ok {
		return core.Info{}, nil, fmt.Errorf("artifact %s not found", key)
	}
	file, err := os.Open(dataPath)
	if err != nil {
		return core.Info{}, nil, err
	}
	return s.infoFor(year, name, entry), file, nil
}

func (s *Store) Head(ctx context.Context, key string) (core.Info, error) {
	year, name, _, err := s.paths(key)
	if err != nil {
		return core.Info{}, err
	}
	man, err := s.readManifest(year)
	if err != nil {
		return core.Info{}, err
	}
	entry, ok := man[name]
	if !ok {
		return core.Info{}, fmt.Errorf("artifact %s not found", key)
	}
	return s.infoFor(year, name, entry), nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	year, name, dataPath, err := s.paths(key)
	if err != nil {
		return false, err
	}
	man, err := s.readManifest(year)
	if err != nil {
		return false, err
	}
	if _, ok := man[name]; !ok {
		return false, nil
	}
	if err := os.Remove(dataPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	delete(man, name)
	if err := s.writeManifest(year, man); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the artifacts recorded in the season's manifest, key ascending.
func (s *Store) List(ctx context.Context, year int) ([]core.Info, error) {
	man, err := s.readManifest(year)
	if err != nil {
		return nil, err
	}
	infos := make([]core.Info, 0, len(man))
	for name, entry := range man {
		infos = append(infos, s.infoFor(year, name, entry))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) infoFor(year int, name string, e manifestEntry) core.Info {
	return core.Info{
		Key:          core.SeasonKey(year, name),
		Season:       year,
		Artifact:     name,
		Size:         e.Size,
		ContentType:  e.ContentType,
		ETag:         e.ETag,
		Metadata:     cloneMetadata(e.Metadata),
		LastModified: e.ArchivedAt,
	}
}

func (s *Store) readManifest(year int) (manifest, error) {
	b, err := os.ReadFile(filepath.Join(s.seasonDir(year), manifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return manifest{}, nil
	}
	if err != nil {
		return nil, err
	}
	var man manifest
	if err := json.Unmarshal(b, &man); err != nil {
		return nil, fmt.Errorf("season %d manifest: %w", year, err)
	}
	return man, nil
}

func (s *Store) writeManifest(year int, man manifest) error {
	b, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.seasonDir(year), manifestName), b, 0o644)
}

func cloneMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
