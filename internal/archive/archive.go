// Package archive writes end-of-season garden history as immutable blob
// artifacts: a JSON snapshot of the full garden state plus tabular CSV
// exports of plants and crosses. Archived lineages feed the Mendelian
// ratio checks in this package.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gardencore/internal/blob"
	"gardencore/internal/core"
	"gardencore/pkg/domain"
)

// Snapshot is the JSON shape of one archived season.
type Snapshot struct {
	Season   domain.SeasonRecord   `json:"season"`
	TakenAt  time.Time             `json:"taken_at"`
	Beds     []domain.Bed          `json:"beds,omitempty"`
	Plots    []domain.Plot         `json:"plots,omitempty"`
	Plants   []domain.Plant        `json:"plants,omitempty"`
	SeedLots []domain.SeedLot      `json:"seed_lots,omitempty"`
	Crosses  []domain.CrossRecord  `json:"crosses,omitempty"`
	Pollen   []domain.PollenPacket `json:"pollen_packets,omitempty"`
}

// Keys returns the blob keys an export of this snapshot writes.
func (s Snapshot) Keys() (archive, plants, crosses string) {
	year := s.Season.Year
	return blob.SeasonKey(year, "archive.json"), blob.SeasonKey(year, "plants.csv"), blob.SeasonKey(year, "crosses.csv")
}

// Archiver exports season snapshots to a blob store and stamps the
// resulting archive key back onto the season record.
type Archiver struct {
	service *core.Service
	blobs   blob.Store
	logger  core.Logger
	nowFn   func() time.Time
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithLogger sets the archive logger.
func WithLogger(l core.Logger) Option {
	return func(a *Archiver) { a.logger = l }
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) { a.nowFn = now }
}

// New constructs an Archiver over the given service and blob store.
func New(service *core.Service, blobs blob.Store, opts ...Option) *Archiver {
	a := &Archiver{
		service: service,
		blobs:   blobs,
		logger:  core.NoopLogger{},
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildSnapshot captures the garden state for the given season record.
func (a *Archiver) BuildSnapshot(seasonID string) (Snapshot, error) {
	store := a.service.Store()
	var season domain.SeasonRecord
	found := false
	for _, rec := range store.ListSeasonRecords() {
		if rec.ID == seasonID {
			season = rec
			found = true
			break
		}
	}
	if !found {
		return Snapshot{}, core.ErrNotFound{Entity: core.EntitySeasonRecord, ID: seasonID}
	}
	return Snapshot{
		Season:   season,
		TakenAt:  a.nowFn().UTC(),
		Beds:     store.ListBeds(),
		Plots:    store.ListPlots(),
		Plants:   store.ListPlants(),
		SeedLots: store.ListSeedLots(),
		Crosses:  store.ListCrossRecords(),
		Pollen:   store.ListPollenPackets(),
	}, nil
}

// ExportSeason snapshots the garden, writes the JSON archive and CSV
// exports, and attaches the archive key to the season record. The blob
// writes are create-only, so a season can only be archived once.
func (a *Archiver) ExportSeason(ctx context.Context, seasonID string) (Snapshot, error) {
	snap, err := a.BuildSnapshot(seasonID)
	if err != nil {
		return Snapshot{}, err
	}
	archiveKey, plantsKey, crossesKey := snap.Keys()

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Snapshot{}, fmt.Errorf("encoding season %d snapshot: %w", snap.Season.Year, err)
	}
	if _, err := a.blobs.Put(ctx, archiveKey, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"year": fmt.Sprintf("%d", snap.Season.Year)},
	}); err != nil {
		return Snapshot{}, fmt.Errorf("writing %s: %w", archiveKey, err)
	}

	plantsCSV, err := marshalPlantRows(snap)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := a.blobs.Put(ctx, plantsKey, bytes.NewReader(plantsCSV), blob.PutOptions{ContentType: "text/csv"}); err != nil {
		return Snapshot{}, fmt.Errorf("writing %s: %w", plantsKey, err)
	}

	crossesCSV, err := marshalCrossRows(snap)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := a.blobs.Put(ctx, crossesKey, bytes.NewReader(crossesCSV), blob.PutOptions{ContentType: "text/csv"}); err != nil {
		return Snapshot{}, fmt.Errorf("writing %s: %w", crossesKey, err)
	}

	if _, _, err := a.service.AttachArchive(ctx, seasonID, archiveKey); err != nil {
		return Snapshot{}, err
	}
	a.logger.Infof("season %d archived under %s", snap.Season.Year, archiveKey)
	return snap, nil
}

// LoadSnapshot reads a previously exported snapshot back from the blob store.
func (a *Archiver) LoadSnapshot(ctx context.Context, key string) (Snapshot, error) {
	_, rc, err := a.blobs.Get(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}
	defer rc.Close()
	var snap Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding %s: %w", key, err)
	}
	return snap, nil
}
