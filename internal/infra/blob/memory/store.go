// Package memory provides an in-process archive store for tests. Seasons
// are held as a map of year to artifacts; nothing is persisted.
package memory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gardencore/internal/blob/core"
)

type artifact struct {
	data []byte
	info core.Info
}

// Store keeps season artifacts in memory.
type Store struct {
	mu      sync.RWMutex
	seasons map[int]map[string]artifact
}

// New returns an empty in-memory archive store.
func New() *Store {
	return &Store{seasons: make(map[int]map[string]artifact)}
}

// Driver reports the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Put stores a new artifact; the key must be a valid season key and
// must not already exist.
func (s *Store) Put(_ context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	year, name, err := core.ParseKey(key)
	if err != nil {
		return core.Info{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Info{}, fmt.Errorf("read artifact %s: %w", key, err)
	}
	sum := sha256.Sum256(data)
	info := core.Info{
		Key:          key,
		Season:       year,
		Artifact:     name,
		Size:         int64(len(data)),
		ContentType:  opts.ContentType,
		ETag:         hex.EncodeToString(sum[:]),
		Metadata:     cloneMetadata(opts.Metadata),
		LastModified: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	season := s.seasons[year]
	if _, exists := season[name]; exists {
		return core.Info{}, fmt.Errorf("artifact %s already archived", key)
	}
	if season == nil {
		season = make(map[string]artifact)
		s.seasons[year] = season
	}
	season[name] = artifact{data: data, info: info}
	return info, nil
}

// Get returns artifact metadata and a reader over a copy of its content.
func (s *Store) Get(_ context.Context, key string) (core.Info, io.ReadCloser, error) {
	a, err := s.lookup(key)
	if err != nil {
		return core.Info{}, nil, err
	}
	return a.info, io.NopCloser(bytes.NewReader(a.data)), nil
}

// Head returns artifact metadata only.
func (s *Store) Head(_ context.Context, key string) (core.Info, error) {
	a, err := s.lookup(key)
	if err != nil {
		return core.Info{}, err
	}
	return a.info, nil
}

// Delete removes the artifact, returning true if it existed.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	year, name, err := core.ParseKey(key)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	season := s.seasons[year]
	if _, ok := season[name]; !ok {
		return false, nil
	}
	delete(season, name)
	if len(season) == 0 {
		delete(s.seasons, year)
	}
	return true, nil
}

// List returns the artifacts archived for a season, key ascending.
func (s *Store) List(_ context.Context, year int) ([]core.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	season := s.seasons[year]
	infos := make([]core.Info, 0, len(season))
	for _, a := range season {
		inf := a.info
		inf.Metadata = cloneMetadata(inf.Metadata)
		infos = append(infos, inf)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) lookup(key string) (artifact, error) {
	year, name, err := core.ParseKey(key)
	if err != nil {
		return artifact{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.seasons[year][name]
	if !ok {
		return artifact{}, fmt.Errorf("artifact %s not found", key)
	}
	dataCopy := make([]byte, len(a.data))
	copy(dataCopy, a.data)
	a.data = dataCopy
	a.info.Metadata = cloneMetadata(a.info.Metadata)
	return a, nil
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
