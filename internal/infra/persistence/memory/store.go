// Package memory provides the canonical in-memory implementation of the
// garden persistence store. Durable backends snapshot and rehydrate this
// store rather than reimplementing transactional semantics.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gardencore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Plant aliases domain.Plant for in-memory persistence operations.
	Plant = domain.Plant
	// Plot aliases domain.Plot.
	Plot = domain.Plot
	// Bed aliases domain.Bed.
	Bed = domain.Bed
	// SeedLot aliases domain.SeedLot.
	SeedLot = domain.SeedLot
	// PollenPacket aliases domain.PollenPacket.
	PollenPacket = domain.PollenPacket
	// CrossRecord aliases domain.CrossRecord.
	CrossRecord = domain.CrossRecord
	// SeasonRecord aliases domain.SeasonRecord.
	SeasonRecord = domain.SeasonRecord
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	plants   map[string]Plant
	plots    map[string]Plot
	beds     map[string]Bed
	seedLots map[string]SeedLot
	pollen   map[string]PollenPacket
	crosses  map[string]CrossRecord
	seasons  map[string]SeasonRecord
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Plants   map[string]Plant        `json:"plants"`
	Plots    map[string]Plot         `json:"plots"`
	Beds     map[string]Bed          `json:"beds"`
	SeedLots map[string]SeedLot      `json:"seed_lots"`
	Pollen   map[string]PollenPacket `json:"pollen"`
	Crosses  map[string]CrossRecord  `json:"crosses"`
	Seasons  map[string]SeasonRecord `json:"seasons"`
}

func newMemoryState() memoryState {
	return memoryState{
		plants:   make(map[string]Plant),
		plots:    make(map[string]Plot),
		beds:     make(map[string]Bed),
		seedLots: make(map[string]SeedLot),
		pollen:   make(map[string]PollenPacket),
		crosses:  make(map[string]CrossRecord),
		seasons:  make(map[string]SeasonRecord),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Plants:   make(map[string]Plant, len(state.plants)),
		Plots:    make(map[string]Plot, len(state.plots)),
		Beds:     make(map[string]Bed, len(state.beds)),
		SeedLots: make(map[string]SeedLot, len(state.seedLots)),
		Pollen:   make(map[string]PollenPacket, len(state.pollen)),
		Crosses:  make(map[string]CrossRecord, len(state.crosses)),
		Seasons:  make(map[string]SeasonRecord, len(state.seasons)),
	}
	for k, v := range state.plants {
		s.Plants[k] = clonePlant(v)
	}
	for k, v := range state.plots {
		s.Plots[k] = clonePlot(v)
	}
	for k, v := range state.beds {
		s.Beds[k] = cloneBed(v)
	}
	for k, v := range state.seedLots {
		s.SeedLots[k] = cloneSeedLot(v)
	}
	for k, v := range state.pollen {
		s.Pollen[k] = clonePollen(v)
	}
	for k, v := range state.crosses {
		s.Crosses[k] = cloneCross(v)
	}
	for k, v := range state.seasons {
		s.Seasons[k] = cloneSeason(v)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Plants {
		state.plants[k] = clonePlant(v)
	}
	for k, v := range s.Plots {
		state.plots[k] = clonePlot(v)
	}
	for k, v := range s.Beds {
		state.beds[k] = cloneBed(v)
	}
	for k, v := range s.SeedLots {
		state.seedLots[k] = cloneSeedLot(v)
	}
	for k, v := range s.Pollen {
		state.pollen[k] = clonePollen(v)
	}
	for k, v := range s.Crosses {
		state.crosses[k] = cloneCross(v)
	}
	for k, v := range s.Seasons {
		state.seasons[k] = cloneSeason(v)
	}
	return state
}

// migrateSnapshot normalizes snapshots loaded from durable backends: nil
// buckets become empty maps, dangling references are cleared, and bed plot
// listings are rebuilt from the plots themselves.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Plants == nil {
		snapshot.Plants = map[string]Plant{}
	}
	if snapshot.Plots == nil {
		snapshot.Plots = map[string]Plot{}
	}
	if snapshot.Beds == nil {
		snapshot.Beds = map[string]Bed{}
	}
	if snapshot.SeedLots == nil {
		snapshot.SeedLots = map[string]SeedLot{}
	}
	if snapshot.Pollen == nil {
		snapshot.Pollen = map[string]PollenPacket{}
	}
	if snapshot.Crosses == nil {
		snapshot.Crosses = map[string]CrossRecord{}
	}
	if snapshot.Seasons == nil {
		snapshot.Seasons = map[string]SeasonRecord{}
	}

	plantExists := func(id string) bool {
		_, ok := snapshot.Plants[id]
		return ok
	}
	bedExists := func(id string) bool {
		_, ok := snapshot.Beds[id]
		return ok
	}

	for id, plot := range snapshot.Plots {
		if plot.BedID == "" || !bedExists(plot.BedID) {
			delete(snapshot.Plots, id)
			continue
		}
		if plot.PlantID != nil && !plantExists(*plot.PlantID) {
			plot.PlantID = nil
		}
		snapshot.Plots[id] = plot
	}

	for id, plant := range snapshot.Plants {
		if plant.PlotID != nil {
			if _, ok := snapshot.Plots[*plant.PlotID]; !ok {
				plant.PlotID = nil
			}
		}
		if plant.SeedLotID != nil {
			if _, ok := snapshot.SeedLots[*plant.SeedLotID]; !ok {
				plant.SeedLotID = nil
			}
		}
		snapshot.Plants[id] = plant
	}

	for id, packet := range snapshot.Pollen {
		if packet.DonorID != "" && !plantExists(packet.DonorID) {
			delete(snapshot.Pollen, id)
		}
	}

	for id, bed := range snapshot.Beds {
		var plotIDs []string
		for _, plot := range snapshot.Plots {
			if plot.BedID == id {
				plotIDs = append(plotIDs, plot.ID)
			}
		}
		sort.Strings(plotIDs)
		bed.PlotIDs = plotIDs
		snapshot.Beds[id] = bed
	}

	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.plants {
		cloned.plants[k] = clonePlant(v)
	}
	for k, v := range s.plots {
		cloned.plots[k] = clonePlot(v)
	}
	for k, v := range s.beds {
		cloned.beds[k] = cloneBed(v)
	}
	for k, v := range s.seedLots {
		cloned.seedLots[k] = cloneSeedLot(v)
	}
	for k, v := range s.pollen {
		cloned.pollen[k] = clonePollen(v)
	}
	for k, v := range s.crosses {
		cloned.crosses[k] = cloneCross(v)
	}
	for k, v := range s.seasons {
		cloned.seasons[k] = cloneSeason(v)
	}
	return cloned
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func clonePlant(p Plant) Plant {
	cp := p
	cp.ParentIDs = append([]string(nil), p.ParentIDs...)
	cp.Genotype = p.Genotype.Clone()
	cp.Phenotype = p.Phenotype.Clone()
	cp.Phases = domain.ClonePhases(p.Phases)
	cp.SeedLotID = cloneStringPtr(p.SeedLotID)
	cp.PlotID = cloneStringPtr(p.PlotID)
	cp.CauseOfDeath = cloneStringPtr(p.CauseOfDeath)
	if p.Pollen != nil {
		ap := *p.Pollen
		ap.Genotype = p.Pollen.Genotype.Clone()
		ap.Phases = domain.ClonePhases(p.Pollen.Phases)
		cp.Pollen = &ap
	}
	return cp
}

func clonePlot(p Plot) Plot {
	cp := p
	cp.PlantID = cloneStringPtr(p.PlantID)
	return cp
}

func cloneBed(b Bed) Bed {
	cp := b
	cp.PlotIDs = append([]string(nil), b.PlotIDs...)
	return cp
}

func cloneSeedLot(l SeedLot) SeedLot {
	cp := l
	cp.Seeds = make([]domain.Seed, len(l.Seeds))
	for i, seed := range l.Seeds {
		sc := seed
		sc.Genotype = seed.Genotype.Clone()
		sc.Phases = domain.ClonePhases(seed.Phases)
		sc.ParentIDs = append([]string(nil), seed.ParentIDs...)
		if seed.ObservedTraits != nil {
			sc.ObservedTraits = make(map[string]string, len(seed.ObservedTraits))
			for k, v := range seed.ObservedTraits {
				sc.ObservedTraits[k] = v
			}
		}
		cp.Seeds[i] = sc
	}
	return cp
}

func clonePollen(p PollenPacket) PollenPacket {
	cp := p
	cp.Genotype = p.Genotype.Clone()
	cp.Phases = domain.ClonePhases(p.Phases)
	return cp
}

func cloneCross(c CrossRecord) CrossRecord {
	cp := c
	cp.SeedLotID = cloneStringPtr(c.SeedLotID)
	return cp
}

func cloneSeason(s SeasonRecord) SeasonRecord {
	cp := s
	cp.EndedAt = cloneTimePtr(s.EndedAt)
	cp.ArchiveKey = cloneStringPtr(s.ArchiveKey)
	cp.Notes = cloneStringPtr(s.Notes)
	return cp
}

// Store provides the in-memory transactional store for the garden domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// SetNowFunc replaces the time provider. The garden simulation drives record
// timestamps from its own clock rather than wall time.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of the transactional state.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func (v transactionView) ListPlants() []Plant {
	out := make([]Plant, 0, len(v.state.plants))
	for _, p := range v.state.plants {
		out = append(out, clonePlant(p))
	}
	return out
}

func (v transactionView) ListPlots() []Plot {
	out := make([]Plot, 0, len(v.state.plots))
	for _, p := range v.state.plots {
		out = append(out, clonePlot(p))
	}
	return out
}

func (v transactionView) ListBeds() []Bed {
	out := make([]Bed, 0, len(v.state.beds))
	for _, b := range v.state.beds {
		out = append(out, cloneBed(decorateBed(v.state, b)))
	}
	return out
}

func (v transactionView) ListSeedLots() []SeedLot {
	out := make([]SeedLot, 0, len(v.state.seedLots))
	for _, l := range v.state.seedLots {
		out = append(out, cloneSeedLot(l))
	}
	return out
}

func (v transactionView) ListPollenPackets() []PollenPacket {
	out := make([]PollenPacket, 0, len(v.state.pollen))
	for _, p := range v.state.pollen {
		out = append(out, clonePollen(p))
	}
	return out
}

func (v transactionView) ListCrossRecords() []CrossRecord {
	out := make([]CrossRecord, 0, len(v.state.crosses))
	for _, c := range v.state.crosses {
		out = append(out, cloneCross(c))
	}
	return out
}

func (v transactionView) ListSeasonRecords() []SeasonRecord {
	out := make([]SeasonRecord, 0, len(v.state.seasons))
	for _, s := range v.state.seasons {
		out = append(out, cloneSeason(s))
	}
	return out
}

func (v transactionView) FindPlant(id string) (Plant, bool) {
	p, ok := v.state.plants[id]
	if !ok {
		return Plant{}, false
	}
	return clonePlant(p), true
}

func (v transactionView) FindPlot(id string) (Plot, bool) {
	p, ok := v.state.plots[id]
	if !ok {
		return Plot{}, false
	}
	return clonePlot(p), true
}

func (v transactionView) FindBed(id string) (Bed, bool) {
	b, ok := v.state.beds[id]
	if !ok {
		return Bed{}, false
	}
	return cloneBed(decorateBed(v.state, b)), true
}

func (v transactionView) FindSeedLot(id string) (SeedLot, bool) {
	l, ok := v.state.seedLots[id]
	if !ok {
		return SeedLot{}, false
	}
	return cloneSeedLot(l), true
}

func (v transactionView) FindPollenPacket(id string) (PollenPacket, bool) {
	p, ok := v.state.pollen[id]
	if !ok {
		return PollenPacket{}, false
	}
	return clonePollen(p), true
}

func bedPlotIDs(state *memoryState, bedID string) []string {
	var ids []string
	for _, plot := range state.plots {
		if plot.BedID == bedID {
			ids = append(ids, plot.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

func decorateBed(state *memoryState, bed Bed) Bed {
	bed.PlotIDs = bedPlotIDs(state, bed.ID)
	return bed
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindPlant exposes plant lookup within the transaction scope.
func (tx *transaction) FindPlant(id string) (Plant, bool) {
	p, ok := tx.state.plants[id]
	if !ok {
		return Plant{}, false
	}
	return clonePlant(p), true
}

// FindPlot exposes plot lookup within the transaction scope.
func (tx *transaction) FindPlot(id string) (Plot, bool) {
	p, ok := tx.state.plots[id]
	if !ok {
		return Plot{}, false
	}
	return clonePlot(p), true
}

// FindSeedLot exposes seed lot lookup within the transaction scope.
func (tx *transaction) FindSeedLot(id string) (SeedLot, bool) {
	l, ok := tx.state.seedLots[id]
	if !ok {
		return SeedLot{}, false
	}
	return cloneSeedLot(l), true
}

// CreatePlant stores a new plant within the transaction.
func (tx *transaction) CreatePlant(p Plant) (Plant, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.plants[p.ID]; exists {
		return Plant{}, fmt.Errorf("plant %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.plants[p.ID] = clonePlant(p)
	tx.recordChange(Change{Entity: domain.EntityPlant, Action: domain.ActionCreate, After: clonePlant(p)})
	return clonePlant(p), nil
}

// UpdatePlant mutates a plant using the provided mutator function.
func (tx *transaction) UpdatePlant(id string, mutator func(*Plant) error) (Plant, error) {
	current, ok := tx.state.plants[id]
	if !ok {
		return Plant{}, fmt.Errorf("plant %q not found", id)
	}
	before := clonePlant(current)
	if err := mutator(&current); err != nil {
		return Plant{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.plants[id] = clonePlant(current)
	tx.recordChange(Change{Entity: domain.EntityPlant, Action: domain.ActionUpdate, Before: before, After: clonePlant(current)})
	return clonePlant(current), nil
}

// DeletePlant removes a plant and clears any plot referencing it.
func (tx *transaction) DeletePlant(id string) error {
	current, ok := tx.state.plants[id]
	if !ok {
		return fmt.Errorf("plant %q not found", id)
	}
	delete(tx.state.plants, id)
	for plotID, plot := range tx.state.plots {
		if plot.PlantID != nil && *plot.PlantID == id {
			plot.PlantID = nil
			tx.state.plots[plotID] = plot
		}
	}
	tx.recordChange(Change{Entity: domain.EntityPlant, Action: domain.ActionDelete, Before: clonePlant(current)})
	return nil
}

// CreatePlot stores a new plot. The referenced bed must exist.
func (tx *transaction) CreatePlot(p Plot) (Plot, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.plots[p.ID]; exists {
		return Plot{}, fmt.Errorf("plot %q already exists", p.ID)
	}
	if _, ok := tx.state.beds[p.BedID]; !ok {
		return Plot{}, fmt.Errorf("plot references unknown bed %q", p.BedID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.plots[p.ID] = clonePlot(p)
	tx.recordChange(Change{Entity: domain.EntityPlot, Action: domain.ActionCreate, After: clonePlot(p)})
	return clonePlot(p), nil
}

// UpdatePlot mutates an existing plot.
func (tx *transaction) UpdatePlot(id string, mutator func(*Plot) error) (Plot, error) {
	current, ok := tx.state.plots[id]
	if !ok {
		return Plot{}, fmt.Errorf("plot %q not found", id)
	}
	before := clonePlot(current)
	if err := mutator(&current); err != nil {
		return Plot{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.plots[id] = clonePlot(current)
	tx.recordChange(Change{Entity: domain.EntityPlot, Action: domain.ActionUpdate, Before: before, After: clonePlot(current)})
	return clonePlot(current), nil
}

// DeletePlot removes a plot. Occupied plots cannot be deleted.
func (tx *transaction) DeletePlot(id string) error {
	current, ok := tx.state.plots[id]
	if !ok {
		return fmt.Errorf("plot %q not found", id)
	}
	if current.PlantID != nil {
		return errors.New("cannot delete an occupied plot")
	}
	delete(tx.state.plots, id)
	tx.recordChange(Change{Entity: domain.EntityPlot, Action: domain.ActionDelete, Before: clonePlot(current)})
	return nil
}

// CreateBed stores a new bed definition.
func (tx *transaction) CreateBed(b Bed) (Bed, error) {
	if b.ID == "" {
		b.ID = tx.store.newID()
	}
	if _, exists := tx.state.beds[b.ID]; exists {
		return Bed{}, fmt.Errorf("bed %q already exists", b.ID)
	}
	if b.Rows <= 0 || b.Cols <= 0 {
		return Bed{}, errors.New("bed dimensions must be positive")
	}
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	tx.state.beds[b.ID] = cloneBed(b)
	tx.recordChange(Change{Entity: domain.EntityBed, Action: domain.ActionCreate, After: cloneBed(b)})
	return cloneBed(b), nil
}

// UpdateBed mutates an existing bed.
func (tx *transaction) UpdateBed(id string, mutator func(*Bed) error) (Bed, error) {
	current, ok := tx.state.beds[id]
	if !ok {
		return Bed{}, fmt.Errorf("bed %q not found", id)
	}
	before := cloneBed(current)
	if err := mutator(&current); err != nil {
		return Bed{}, err
	}
	if current.Rows <= 0 || current.Cols <= 0 {
		return Bed{}, errors.New("bed dimensions must be positive")
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.beds[id] = cloneBed(current)
	tx.recordChange(Change{Entity: domain.EntityBed, Action: domain.ActionUpdate, Before: before, After: cloneBed(current)})
	return cloneBed(current), nil
}

// DeleteBed removes a bed along with its empty plots.
func (tx *transaction) DeleteBed(id string) error {
	current, ok := tx.state.beds[id]
	if !ok {
		return fmt.Errorf("bed %q not found", id)
	}
	for _, plot := range tx.state.plots {
		if plot.BedID == id && plot.PlantID != nil {
			return errors.New("cannot delete a bed with occupied plots")
		}
	}
	for plotID, plot := range tx.state.plots {
		if plot.BedID == id {
			delete(tx.state.plots, plotID)
		}
	}
	delete(tx.state.beds, id)
	tx.recordChange(Change{Entity: domain.EntityBed, Action: domain.ActionDelete, Before: cloneBed(current)})
	return nil
}

// CreateSeedLot stores a seed inventory record.
func (tx *transaction) CreateSeedLot(l SeedLot) (SeedLot, error) {
	if l.ID == "" {
		l.ID = tx.store.newID()
	}
	if _, exists := tx.state.seedLots[l.ID]; exists {
		return SeedLot{}, fmt.Errorf("seed lot %q already exists", l.ID)
	}
	l.CreatedAt = tx.now
	l.UpdatedAt = tx.now
	tx.state.seedLots[l.ID] = cloneSeedLot(l)
	tx.recordChange(Change{Entity: domain.EntitySeedLot, Action: domain.ActionCreate, After: cloneSeedLot(l)})
	return cloneSeedLot(l), nil
}

// UpdateSeedLot mutates an existing seed lot.
func (tx *transaction) UpdateSeedLot(id string, mutator func(*SeedLot) error) (SeedLot, error) {
	current, ok := tx.state.seedLots[id]
	if !ok {
		return SeedLot{}, fmt.Errorf("seed lot %q not found", id)
	}
	before := cloneSeedLot(current)
	if err := mutator(&current); err != nil {
		return SeedLot{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.seedLots[id] = cloneSeedLot(current)
	tx.recordChange(Change{Entity: domain.EntitySeedLot, Action: domain.ActionUpdate, Before: before, After: cloneSeedLot(current)})
	return cloneSeedLot(current), nil
}

// DeleteSeedLot removes a seed lot from state.
func (tx *transaction) DeleteSeedLot(id string) error {
	current, ok := tx.state.seedLots[id]
	if !ok {
		return fmt.Errorf("seed lot %q not found", id)
	}
	delete(tx.state.seedLots, id)
	tx.recordChange(Change{Entity: domain.EntitySeedLot, Action: domain.ActionDelete, Before: cloneSeedLot(current)})
	return nil
}

// CreatePollenPacket stores collected pollen. The donor plant must exist.
func (tx *transaction) CreatePollenPacket(p PollenPacket) (PollenPacket, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.pollen[p.ID]; exists {
		return PollenPacket{}, fmt.Errorf("pollen packet %q already exists", p.ID)
	}
	if _, ok := tx.state.plants[p.DonorID]; !ok {
		return PollenPacket{}, fmt.Errorf("pollen packet references unknown donor %q", p.DonorID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.pollen[p.ID] = clonePollen(p)
	tx.recordChange(Change{Entity: domain.EntityPollenPacket, Action: domain.ActionCreate, After: clonePollen(p)})
	return clonePollen(p), nil
}

// UpdatePollenPacket mutates an existing pollen packet.
func (tx *transaction) UpdatePollenPacket(id string, mutator func(*PollenPacket) error) (PollenPacket, error) {
	current, ok := tx.state.pollen[id]
	if !ok {
		return PollenPacket{}, fmt.Errorf("pollen packet %q not found", id)
	}
	before := clonePollen(current)
	if err := mutator(&current); err != nil {
		return PollenPacket{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.pollen[id] = clonePollen(current)
	tx.recordChange(Change{Entity: domain.EntityPollenPacket, Action: domain.ActionUpdate, Before: before, After: clonePollen(current)})
	return clonePollen(current), nil
}

// DeletePollenPacket removes a pollen packet.
func (tx *transaction) DeletePollenPacket(id string) error {
	current, ok := tx.state.pollen[id]
	if !ok {
		return fmt.Errorf("pollen packet %q not found", id)
	}
	delete(tx.state.pollen, id)
	tx.recordChange(Change{Entity: domain.EntityPollenPacket, Action: domain.ActionDelete, Before: clonePollen(current)})
	return nil
}

// CreateCrossRecord stores a pollination record.
func (tx *transaction) CreateCrossRecord(c CrossRecord) (CrossRecord, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.crosses[c.ID]; exists {
		return CrossRecord{}, fmt.Errorf("cross record %q already exists", c.ID)
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.crosses[c.ID] = cloneCross(c)
	tx.recordChange(Change{Entity: domain.EntityCrossRecord, Action: domain.ActionCreate, After: cloneCross(c)})
	return cloneCross(c), nil
}

// UpdateCrossRecord mutates an existing cross record.
func (tx *transaction) UpdateCrossRecord(id string, mutator func(*CrossRecord) error) (CrossRecord, error) {
	current, ok := tx.state.crosses[id]
	if !ok {
		return CrossRecord{}, fmt.Errorf("cross record %q not found", id)
	}
	before := cloneCross(current)
	if err := mutator(&current); err != nil {
		return CrossRecord{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.crosses[id] = cloneCross(current)
	tx.recordChange(Change{Entity: domain.EntityCrossRecord, Action: domain.ActionUpdate, Before: before, After: cloneCross(current)})
	return cloneCross(current), nil
}

// CreateSeasonRecord stores a season summary.
func (tx *transaction) CreateSeasonRecord(r SeasonRecord) (SeasonRecord, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.seasons[r.ID]; exists {
		return SeasonRecord{}, fmt.Errorf("season record %q already exists", r.ID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.seasons[r.ID] = cloneSeason(r)
	tx.recordChange(Change{Entity: domain.EntitySeasonRecord, Action: domain.ActionCreate, After: cloneSeason(r)})
	return cloneSeason(r), nil
}

// UpdateSeasonRecord mutates an existing season record.
func (tx *transaction) UpdateSeasonRecord(id string, mutator func(*SeasonRecord) error) (SeasonRecord, error) {
	current, ok := tx.state.seasons[id]
	if !ok {
		return SeasonRecord{}, fmt.Errorf("season record %q not found", id)
	}
	before := cloneSeason(current)
	if err := mutator(&current); err != nil {
		return SeasonRecord{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.seasons[id] = cloneSeason(current)
	tx.recordChange(Change{Entity: domain.EntitySeasonRecord, Action: domain.ActionUpdate, Before: before, After: cloneSeason(current)})
	return cloneSeason(current), nil
}

// Read helpers ---------------------------------------------------------------

// GetPlant retrieves a plant by ID from committed state.
func (s *Store) GetPlant(id string) (Plant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.plants[id]
	if !ok {
		return Plant{}, false
	}
	return clonePlant(p), true
}

// ListPlants returns all plants from committed state.
func (s *Store) ListPlants() []Plant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Plant, 0, len(s.state.plants))
	for _, p := range s.state.plants {
		out = append(out, clonePlant(p))
	}
	return out
}

// GetPlot retrieves a plot by ID.
func (s *Store) GetPlot(id string) (Plot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.plots[id]
	if !ok {
		return Plot{}, false
	}
	return clonePlot(p), true
}

// ListPlots returns all plots.
func (s *Store) ListPlots() []Plot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Plot, 0, len(s.state.plots))
	for _, p := range s.state.plots {
		out = append(out, clonePlot(p))
	}
	return out
}

// ListBeds returns all beds with their plot listings rebuilt.
func (s *Store) ListBeds() []Bed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Bed, 0, len(s.state.beds))
	for _, b := range s.state.beds {
		out = append(out, cloneBed(decorateBed(&s.state, b)))
	}
	return out
}

// GetSeedLot retrieves a seed lot by ID.
func (s *Store) GetSeedLot(id string) (SeedLot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.state.seedLots[id]
	if !ok {
		return SeedLot{}, false
	}
	return cloneSeedLot(l), true
}

// ListSeedLots returns all seed lots.
func (s *Store) ListSeedLots() []SeedLot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SeedLot, 0, len(s.state.seedLots))
	for _, l := range s.state.seedLots {
		out = append(out, cloneSeedLot(l))
	}
	return out
}

// ListPollenPackets returns all pollen packets.
func (s *Store) ListPollenPackets() []PollenPacket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PollenPacket, 0, len(s.state.pollen))
	for _, p := range s.state.pollen {
		out = append(out, clonePollen(p))
	}
	return out
}

// ListCrossRecords returns all cross records.
func (s *Store) ListCrossRecords() []CrossRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CrossRecord, 0, len(s.state.crosses))
	for _, c := range s.state.crosses {
		out = append(out, cloneCross(c))
	}
	return out
}

// ListSeasonRecords returns all season records.
func (s *Store) ListSeasonRecords() []SeasonRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SeasonRecord, 0, len(s.state.seasons))
	for _, r := range s.state.seasons {
		out = append(out, cloneSeason(r))
	}
	return out
}
