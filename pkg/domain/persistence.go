package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreatePlant(Plant) (Plant, error)
	UpdatePlant(id string, mutator func(*Plant) error) (Plant, error)
	DeletePlant(id string) error
	CreatePlot(Plot) (Plot, error)
	UpdatePlot(id string, mutator func(*Plot) error) (Plot, error)
	DeletePlot(id string) error
	CreateBed(Bed) (Bed, error)
	UpdateBed(id string, mutator func(*Bed) error) (Bed, error)
	DeleteBed(id string) error
	CreateSeedLot(SeedLot) (SeedLot, error)
	UpdateSeedLot(id string, mutator func(*SeedLot) error) (SeedLot, error)
	DeleteSeedLot(id string) error
	CreatePollenPacket(PollenPacket) (PollenPacket, error)
	UpdatePollenPacket(id string, mutator func(*PollenPacket) error) (PollenPacket, error)
	DeletePollenPacket(id string) error
	CreateCrossRecord(CrossRecord) (CrossRecord, error)
	UpdateCrossRecord(id string, mutator func(*CrossRecord) error) (CrossRecord, error)
	CreateSeasonRecord(SeasonRecord) (SeasonRecord, error)
	UpdateSeasonRecord(id string, mutator func(*SeasonRecord) error) (SeasonRecord, error)
	FindPlant(id string) (Plant, bool)
	FindPlot(id string) (Plot, bool)
	FindSeedLot(id string) (SeedLot, bool)
}

// TransactionView provides read-only access to snapshot data. The same view
// backs service reads and rule evaluation.
type TransactionView interface {
	RuleView
	ListSeasonRecords() []SeasonRecord
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetPlant(id string) (Plant, bool)
	ListPlants() []Plant
	GetPlot(id string) (Plot, bool)
	ListPlots() []Plot
	ListBeds() []Bed
	GetSeedLot(id string) (SeedLot, bool)
	ListSeedLots() []SeedLot
	ListPollenPackets() []PollenPacket
	ListCrossRecords() []CrossRecord
	ListSeasonRecords() []SeasonRecord
}
