package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"gardencore/pkg/domain"
)

func TestStorePersistsAndRehydrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garden.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var bedID string
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		bed, err := tx.CreateBed(domain.Bed{Name: "south bed", Rows: 2, Cols: 2})
		if err != nil {
			return err
		}
		bedID = bed.ID
		if _, err := tx.CreatePlot(domain.Plot{BedID: bed.ID, Row: 0, Col: 1}); err != nil {
			return err
		}
		_, err = tx.CreateSeedLot(domain.SeedLot{Name: "heirloom", Origin: "monastery"})
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	beds := reopened.ListBeds()
	if len(beds) != 1 || beds[0].ID != bedID {
		t.Fatalf("bed not rehydrated: %+v", beds)
	}
	if len(beds[0].PlotIDs) != 1 {
		t.Fatalf("plot listing not rebuilt on load: %+v", beds[0])
	}
	if len(reopened.ListSeedLots()) != 1 {
		t.Fatalf("seed lot not rehydrated")
	}
	if reopened.Path() != path {
		t.Fatalf("path = %q, want %q", reopened.Path(), path)
	}
}

func TestFailedTransactionLeavesNoSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garden.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreatePlot(domain.Plot{BedID: "no-such-bed"})
		return err
	})
	if err == nil {
		t.Fatalf("expected reference error")
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count state rows: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed transaction wrote %d snapshot buckets", count)
	}
}
