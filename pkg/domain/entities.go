// Package domain defines the persistent entities, value types, and rule
// evaluation primitives used by gardencore.
package domain

import (
	"time"

	"gardencore/pkg/genetics"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityPlant identifies an individual plant record.
	EntityPlant EntityType = "plant"
	// EntityPlot identifies a single planting tile.
	EntityPlot EntityType = "plot"
	// EntityBed identifies a group of plots managed together.
	EntityBed EntityType = "bed"
	// EntitySeedLot identifies a seed inventory record.
	EntitySeedLot EntityType = "seed_lot"
	// EntityPollenPacket identifies collected pollen awaiting application.
	EntityPollenPacket EntityType = "pollen_packet"
	// EntitySeasonRecord identifies an archived season summary.
	EntitySeasonRecord EntityType = "season_record"
	// EntityCrossRecord identifies a completed pollination event.
	EntityCrossRecord EntityType = "cross_record"
)

// GrowthStage represents the canonical plant development states, ordered
// from sown seed to mature pods.
type GrowthStage int

// Canonical growth stages. Trait visibility and pollination windows are
// gated on these values.
const (
	StageSeed GrowthStage = iota
	StageGermination
	StageSeedling
	StageYoungPlant
	StageBudding
	StageFlowering
	StagePodFill
	StageMature
)

var stageNames = [...]string{
	"seed", "germination", "seedling", "young_plant",
	"budding", "flowering", "pod_fill", "mature",
}

func (s GrowthStage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// CrossKind distinguishes how a plant's ovules were fertilised.
type CrossKind string

// Pollination kinds recorded on cross records.
const (
	CrossOutcross CrossKind = "cross"
	CrossSelfing  CrossKind = "self"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppliedPollen records pollen that has been applied to a plant's flowers
// but not yet resolved into harvested seed.
type AppliedPollen struct {
	PacketID   string                        `json:"packet_id,omitempty"`
	DonorID    string                        `json:"donor_id"`
	Kind       CrossKind                     `json:"kind"`
	Genotype   genetics.Genotype             `json:"genotype"`
	Phases     map[string]genetics.PhasePair `json:"phases,omitempty"`
	Generation int                           `json:"generation"`
	AppliedAt  time.Time                     `json:"applied_at"`
}

// Plant represents an individual pea plant growing in a plot.
type Plant struct {
	Base
	Label             string                        `json:"label"`
	Generation        int                           `json:"generation"`
	ParentIDs         []string                      `json:"parent_ids,omitempty"`
	SeedLotID         *string                       `json:"seed_lot_id,omitempty"`
	PlotID            *string                       `json:"plot_id,omitempty"`
	Genotype          genetics.Genotype             `json:"genotype"`
	Phenotype         genetics.Phenotype            `json:"phenotype"`
	Phases            map[string]genetics.PhasePair `json:"phases,omitempty"`
	Stage             GrowthStage                   `json:"stage"`
	GDD               float64                       `json:"gdd"`
	GDDTarget         float64                       `json:"gdd_target"`
	Water             float64                       `json:"water"`
	Health            float64                       `json:"health"`
	Stress            float64                       `json:"stress"`
	Alive             bool                          `json:"alive"`
	CauseOfDeath      *string                       `json:"cause_of_death,omitempty"`
	SownAt            time.Time                     `json:"sown_at"`
	AgeDays           int                           `json:"age_days"`
	LifespanDays      int                           `json:"lifespan_days"`
	SenescentDays     int                           `json:"senescent_days,omitempty"`
	SenescenceCapDays int                           `json:"senescence_cap_days,omitempty"`
	StressStreak      int                           `json:"stress_streak,omitempty"`
	Emasculated       bool                          `json:"emasculated"`
	Pollen            *AppliedPollen                `json:"pollen,omitempty"`
	PodCount          int                           `json:"pod_count"`
	Harvested         bool                          `json:"harvested"`
}

// Organism projects the plant's genetic state into the breeding engine's
// organism shape.
func (p Plant) Organism() genetics.Organism {
	return genetics.Organism{
		ID:         p.ID,
		Generation: p.Generation,
		ParentIDs:  append([]string(nil), p.ParentIDs...),
		Genotype:   p.Genotype.Clone(),
		Phenotype:  p.Phenotype.Clone(),
		Phases:     ClonePhases(p.Phases),
	}
}

// ClonePhases deep-copies a linkage phase map.
func ClonePhases(phases map[string]genetics.PhasePair) map[string]genetics.PhasePair {
	if phases == nil {
		return nil
	}
	out := make(map[string]genetics.PhasePair, len(phases))
	for k, v := range phases {
		out[k] = v
	}
	return out
}

// RevealedTraits returns the subset of the phenotype observable at the
// plant's current growth stage.
func (p Plant) RevealedTraits() map[string]string {
	out := make(map[string]string)
	for character, value := range p.Phenotype {
		if int(p.Stage) >= genetics.PeaRevealStage(character) {
			out[character] = value
		}
	}
	return out
}

// Plot is a single planting tile. A plot holds at most one living plant.
type Plot struct {
	Base
	BedID        string  `json:"bed_id"`
	Row          int     `json:"row"`
	Col          int     `json:"col"`
	PlantID      *string `json:"plant_id,omitempty"`
	SoilMoisture float64 `json:"soil_moisture"`
	SoilTempC    float64 `json:"soil_temp_c"`
}

// Occupied reports whether the plot currently hosts a plant.
func (p Plot) Occupied() bool { return p.PlantID != nil }

// Bed groups plots into a managed rectangle.
type Bed struct {
	Base
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Cols    int      `json:"cols"`
	PlotIDs []string `json:"plot_ids"`
}

// Capacity returns the number of tiles the bed provides.
func (b Bed) Capacity() int { return b.Rows * b.Cols }

// Seed is one seed held in a lot. Seeds harvested in the garden carry an
// exact genotype; acquired founder seed may carry observed traits only,
// with the genotype inferred at sowing time.
type Seed struct {
	Genotype       genetics.Genotype             `json:"genotype,omitempty"`
	ObservedTraits map[string]string             `json:"observed_traits,omitempty"`
	Phases         map[string]genetics.PhasePair `json:"phases,omitempty"`
	Generation     int                           `json:"generation"`
	ParentIDs      []string                      `json:"parent_ids,omitempty"`
}

// SeedLot is a packet of seeds with shared provenance.
type SeedLot struct {
	Base
	Name   string `json:"name"`
	Origin string `json:"origin"`
	Seeds  []Seed `json:"seeds"`
}

// Count returns the number of seeds remaining in the lot.
func (l SeedLot) Count() int { return len(l.Seeds) }

// PollenPacket holds pollen collected from a donor plant. Pollen loses
// viability after ViableUntil.
type PollenPacket struct {
	Base
	DonorID     string                        `json:"donor_id"`
	Label       string                        `json:"label"`
	Genotype    genetics.Genotype             `json:"genotype"`
	Phases      map[string]genetics.PhasePair `json:"phases,omitempty"`
	Generation  int                           `json:"generation"`
	CollectedAt time.Time                     `json:"collected_at"`
	ViableUntil time.Time                     `json:"viable_until"`
	Used        bool                          `json:"used"`
}

// Viable reports whether the packet can still fertilise at the given time.
func (p PollenPacket) Viable(at time.Time) bool {
	return !p.Used && !at.After(p.ViableUntil)
}

// CrossRecord captures a completed pollination and its harvested outcome.
type CrossRecord struct {
	Base
	MotherID  string    `json:"mother_id"`
	FatherID  string    `json:"father_id"`
	Kind      CrossKind `json:"kind"`
	Year      int       `json:"year"`
	SeedLotID *string   `json:"seed_lot_id,omitempty"`
	SeedCount int       `json:"seed_count"`
}

// SeasonRecord summarises one completed growing season.
type SeasonRecord struct {
	Base
	Year           int        `json:"year"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	PlantsSown     int        `json:"plants_sown"`
	PlantsDied     int        `json:"plants_died"`
	SeedsHarvested int        `json:"seeds_harvested"`
	CrossCount     int        `json:"cross_count"`
	ArchiveKey     *string    `json:"archive_key,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
