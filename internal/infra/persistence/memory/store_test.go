package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"gardencore/pkg/domain"
	"gardencore/pkg/genetics"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedBedAndPlot(t *testing.T, store *Store) (Bed, Plot) {
	t.Helper()
	var bed Bed
	var plot Plot
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		bed, err = tx.CreateBed(Bed{Name: "east bed", Rows: 2, Cols: 3})
		if err != nil {
			return err
		}
		plot, err = tx.CreatePlot(Plot{BedID: bed.ID, Row: 0, Col: 0})
		return err
	})
	if err != nil {
		t.Fatalf("seed bed/plot: %v", err)
	}
	return bed, plot
}

func TestCreatePlantAssignsIdentityAndTimestamps(t *testing.T) {
	store := NewStore(nil)
	now := time.Date(1858, time.April, 3, 9, 0, 0, 0, time.UTC)
	store.SetNowFunc(fixedClock(now))

	var created Plant
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		created, err = tx.CreatePlant(Plant{
			Label:    "P-001",
			Genotype: genetics.Genotype{"R": genetics.Pair{"R", "r"}},
			Alive:    true,
		})
		return err
	})
	if err != nil {
		t.Fatalf("create plant: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not taken from clock: %+v", created.Base)
	}
	stored, ok := store.GetPlant(created.ID)
	if !ok {
		t.Fatalf("plant not committed")
	}
	stored.Genotype["R"] = genetics.Pair{"r", "r"}
	again, _ := store.GetPlant(created.ID)
	if again.Genotype["R"] != (genetics.Pair{"R", "r"}) {
		t.Fatalf("store returned shared genotype state")
	}
}

func TestTransactionRollbackOnError(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreatePlant(Plant{Label: "doomed"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatalf("expected error from transaction")
	}
	if got := len(store.ListPlants()); got != 0 {
		t.Fatalf("rolled-back plant persisted, count=%d", got)
	}
}

type blockEverything struct{}

func (blockEverything) Name() string { return "block_everything" }

func (blockEverything) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (Result, error) {
	if len(changes) == 0 {
		return Result{}, nil
	}
	return Result{Violations: []domain.Violation{{Rule: "block_everything", Severity: domain.SeverityBlock}}}, nil
}

func TestBlockingRulePreventsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockEverything{})
	store := NewStore(engine)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateBed(Bed{Name: "west bed", Rows: 1, Cols: 1})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if len(store.ListBeds()) != 0 {
		t.Fatalf("blocked transaction committed state")
	}
}

func TestPlotRequiresExistingBed(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreatePlot(Plot{BedID: "missing"})
		return err
	})
	if err == nil {
		t.Fatalf("expected bed reference error")
	}
}

func TestDeleteGuards(t *testing.T) {
	store := NewStore(nil)
	_, plot := seedBedAndPlot(t, store)

	var plant Plant
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		plant, err = tx.CreatePlant(Plant{Label: "P-001", Alive: true})
		if err != nil {
			return err
		}
		_, err = tx.UpdatePlot(plot.ID, func(p *Plot) error {
			p.PlantID = &plant.ID
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("plant into plot: %v", err)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.DeletePlot(plot.ID)
	}); err == nil {
		t.Fatalf("expected occupied plot delete to fail")
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.DeleteBed(plot.BedID)
	}); err == nil {
		t.Fatalf("expected occupied bed delete to fail")
	}

	// Deleting the plant clears the plot reference.
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.DeletePlant(plant.ID)
	}); err != nil {
		t.Fatalf("delete plant: %v", err)
	}
	freed, _ := store.GetPlot(plot.ID)
	if freed.PlantID != nil {
		t.Fatalf("plot still references deleted plant")
	}
}

func TestPollenPacketRequiresDonor(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreatePollenPacket(PollenPacket{DonorID: "ghost"})
		return err
	})
	if err == nil {
		t.Fatalf("expected donor reference error")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := NewStore(nil)
	bed, plot := seedBedAndPlot(t, store)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		plant, err := tx.CreatePlant(Plant{Label: "P-001", Alive: true, PlotID: &plot.ID})
		if err != nil {
			return err
		}
		if _, err := tx.UpdatePlot(plot.ID, func(p *Plot) error {
			p.PlantID = &plant.ID
			return nil
		}); err != nil {
			return err
		}
		_, err = tx.CreateSeedLot(SeedLot{Name: "founder stock", Origin: "market", Seeds: []domain.Seed{
			{ObservedTraits: map[string]string{"seed_shape": "round"}},
		}})
		return err
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	snapshot := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snapshot)

	if len(restored.ListPlants()) != 1 || len(restored.ListPlots()) != 1 || len(restored.ListSeedLots()) != 1 {
		t.Fatalf("restore lost records: plants=%d plots=%d lots=%d",
			len(restored.ListPlants()), len(restored.ListPlots()), len(restored.ListSeedLots()))
	}
	beds := restored.ListBeds()
	if len(beds) != 1 || beds[0].ID != bed.ID {
		t.Fatalf("bed not restored: %+v", beds)
	}
	if len(beds[0].PlotIDs) != 1 || beds[0].PlotIDs[0] != plot.ID {
		t.Fatalf("bed plot listing not rebuilt: %+v", beds[0].PlotIDs)
	}
}

func TestImportMigratesDanglingReferences(t *testing.T) {
	ghost := "ghost"
	snapshot := Snapshot{
		Beds: map[string]Bed{
			"b1": {Base: domain.Base{ID: "b1"}, Name: "bed", Rows: 1, Cols: 2},
		},
		Plots: map[string]Plot{
			"p1":       {Base: domain.Base{ID: "p1"}, BedID: "b1", PlantID: &ghost},
			"orphaned": {Base: domain.Base{ID: "orphaned"}, BedID: "missing-bed"},
		},
		Plants: map[string]Plant{
			"plant1": {Base: domain.Base{ID: "plant1"}, PlotID: &ghost, SeedLotID: &ghost},
		},
		Pollen: map[string]PollenPacket{
			"pk1": {Base: domain.Base{ID: "pk1"}, DonorID: "ghost"},
		},
	}
	store := NewStore(nil)
	store.ImportState(snapshot)

	if len(store.ListPlots()) != 1 {
		t.Fatalf("orphaned plot survived migration")
	}
	plot, _ := store.GetPlot("p1")
	if plot.PlantID != nil {
		t.Fatalf("dangling plant reference survived migration")
	}
	plant, _ := store.GetPlant("plant1")
	if plant.PlotID != nil || plant.SeedLotID != nil {
		t.Fatalf("dangling plant links survived migration: %+v", plant)
	}
	if len(store.ListPollenPackets()) != 0 {
		t.Fatalf("pollen without donor survived migration")
	}
}

func TestViewSeesCommittedStateOnly(t *testing.T) {
	store := NewStore(nil)
	seedBedAndPlot(t, store)
	err := store.View(context.Background(), func(view TransactionView) error {
		if len(view.ListBeds()) != 1 || len(view.ListPlots()) != 1 {
			t.Fatalf("view missing committed records")
		}
		if len(view.ListPlants()) != 0 {
			t.Fatalf("view invented plants")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
