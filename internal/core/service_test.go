package core_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gardencore/internal/core"
	"gardencore/internal/infra/persistence/memory"
	"gardencore/internal/season"
	"gardencore/pkg/domain"
	"gardencore/pkg/genetics"
)

var seasonStart = time.Date(1856, time.April, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	service *core.Service
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: seasonStart}
	f.store = memory.NewStore(core.NewDefaultRulesEngine())
	f.store.SetNowFunc(func() time.Time { return f.now })
	f.service = core.NewService(f.store, nil,
		core.WithRandom(rand.New(rand.NewSource(5))),
		core.WithClock(func() time.Time { return f.now }),
	)
	return f
}

func dominantGenotype() genetics.Genotype {
	return genetics.Genotype{
		genetics.LocusSeedShape:     {"R", "R"},
		genetics.LocusSeedColor:     {"I", "I"},
		genetics.LocusFlowerColor:   {"A", "A"},
		genetics.LocusPlantHeight:   {"Le", "Le"},
		genetics.LocusPodColor:      {"Gp", "Gp"},
		genetics.LocusPodParchment:  {"P", "P"},
		genetics.LocusPodValve:      {"V", "V"},
		genetics.LocusFasciation:    {"Fa", "Fa"},
		genetics.LocusFasciationMod: {"Mfa", "Mfa"},
	}
}

func recessiveGenotype() genetics.Genotype {
	return genetics.Genotype{
		genetics.LocusSeedShape:     {"r", "r"},
		genetics.LocusSeedColor:     {"i", "i"},
		genetics.LocusFlowerColor:   {"a", "a"},
		genetics.LocusPlantHeight:   {"le", "le"},
		genetics.LocusPodColor:      {"gp", "gp"},
		genetics.LocusPodParchment:  {"p", "p"},
		genetics.LocusPodValve:      {"v", "v"},
		genetics.LocusFasciation:    {"fa", "fa"},
		genetics.LocusFasciationMod: {"mfa", "mfa"},
	}
}

// plantInPlot sows a genotype into a fresh bed and returns the plant.
func (f *fixture) plantInPlot(t *testing.T, g genetics.Genotype, label string) core.Plant {
	t.Helper()
	ctx := context.Background()
	bed, _, err := f.service.CreateBed(ctx, "bed "+label, 1, 1)
	if err != nil {
		t.Fatalf("creating bed: %v", err)
	}
	lot, _, err := f.service.CreateSeedLot(ctx, core.SeedLot{
		Name:  "lot " + label,
		Seeds: []core.Seed{{Genotype: g}},
	})
	if err != nil {
		t.Fatalf("creating seed lot: %v", err)
	}
	plant, _, err := f.service.SowSeed(ctx, lot.ID, bed.PlotIDs[0], label)
	if err != nil {
		t.Fatalf("sowing: %v", err)
	}
	return plant
}

// forceStage pushes a plant to a growth stage directly through the store.
func (f *fixture) forceStage(t *testing.T, plantID string, stage core.GrowthStage) {
	t.Helper()
	_, err := f.store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdatePlant(plantID, func(p *domain.Plant) error {
			p.Stage = stage
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("forcing stage: %v", err)
	}
}

func TestCreateBedLaysOutPlots(t *testing.T) {
	f := newFixture(t)
	bed, _, err := f.service.CreateBed(context.Background(), "east bed", 2, 3)
	if err != nil {
		t.Fatalf("creating bed: %v", err)
	}
	if len(bed.PlotIDs) != 6 {
		t.Fatalf("bed has %d plots, want 6", len(bed.PlotIDs))
	}
	for _, plot := range f.store.ListPlots() {
		if plot.BedID != bed.ID {
			t.Fatalf("plot %s not linked to bed", plot.ID)
		}
		if plot.Occupied() {
			t.Fatalf("freshly laid plot %s is occupied", plot.ID)
		}
	}
}

func TestSowSeedFromGenotype(t *testing.T) {
	f := newFixture(t)
	plant := f.plantInPlot(t, dominantGenotype(), "p1")

	if plant.Stage != core.StageSeed {
		t.Fatalf("stage = %v, want seed", plant.Stage)
	}
	if !plant.Alive || plant.Health != 100 {
		t.Fatalf("unexpected vitals: alive=%v health=%v", plant.Alive, plant.Health)
	}
	if plant.GDDTarget < season.ThresholdMin || plant.GDDTarget > season.ThresholdMax {
		t.Fatalf("gdd target %v outside draw range", plant.GDDTarget)
	}
	want := genetics.Phenotype{
		genetics.CharSeedShape:      "round",
		genetics.CharSeedColor:      "yellow",
		genetics.CharFlowerColor:    "purple",
		genetics.CharPlantHeight:    "tall",
		genetics.CharPodColor:       "green",
		genetics.CharPodShape:       "inflated",
		genetics.CharFlowerPosition: "axial",
	}
	if diff := cmp.Diff(want, plant.Phenotype); diff != "" {
		t.Fatalf("phenotype mismatch (-want +got):\n%s", diff)
	}

	plot, ok := f.store.GetPlot(*plant.PlotID)
	if !ok || plot.PlantID == nil || *plot.PlantID != plant.ID {
		t.Fatal("plot does not host the sown plant")
	}
	lot, _ := f.store.GetSeedLot(*plant.SeedLotID)
	if lot.Count() != 0 {
		t.Fatalf("seed not consumed, %d left", lot.Count())
	}
}

func TestSowSeedInfersObservedTraits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bed, _, err := f.service.CreateBed(ctx, "market bed", 1, 1)
	if err != nil {
		t.Fatalf("creating bed: %v", err)
	}
	observed := map[string]string{
		genetics.CharSeedShape:      "wrinkled",
		genetics.CharSeedColor:      "green",
		genetics.CharFlowerColor:    "white",
		genetics.CharPlantHeight:    "dwarf",
		genetics.CharPodColor:       "yellow",
		genetics.CharPodShape:       "constricted",
		genetics.CharFlowerPosition: "axial",
	}
	lot, _, err := f.service.CreateSeedLot(ctx, core.SeedLot{
		Name:   "market packet",
		Origin: "market",
		Seeds:  []core.Seed{{ObservedTraits: observed}},
	})
	if err != nil {
		t.Fatalf("creating seed lot: %v", err)
	}
	plant, _, err := f.service.SowSeed(ctx, lot.ID, bed.PlotIDs[0], "market plant")
	if err != nil {
		t.Fatalf("sowing: %v", err)
	}
	// Single-locus recessive observations pin the inferred genotype, so
	// the derived phenotype must reproduce them exactly.
	for _, char := range []string{
		genetics.CharSeedShape, genetics.CharSeedColor, genetics.CharFlowerColor,
		genetics.CharPlantHeight, genetics.CharPodColor, genetics.CharPodShape,
	} {
		if plant.Phenotype[char] != observed[char] {
			t.Fatalf("%s = %q, want %q", char, plant.Phenotype[char], observed[char])
		}
	}
}

func TestSowSeedGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plant := f.plantInPlot(t, dominantGenotype(), "first")

	lot, _, err := f.service.CreateSeedLot(ctx, core.SeedLot{
		Name:  "spare",
		Seeds: []core.Seed{{Genotype: dominantGenotype()}},
	})
	if err != nil {
		t.Fatalf("creating lot: %v", err)
	}
	if _, _, err := f.service.SowSeed(ctx, lot.ID, *plant.PlotID, "second"); err == nil {
		t.Fatal("sowing into an occupied plot succeeded")
	}
	if _, _, err := f.service.SowSeed(ctx, "missing", *plant.PlotID, "x"); err == nil {
		t.Fatal("sowing from missing lot succeeded")
	}

	empty, _, err := f.service.CreateSeedLot(ctx, core.SeedLot{Name: "empty"})
	if err != nil {
		t.Fatalf("creating empty lot: %v", err)
	}
	bed, _, err := f.service.CreateBed(ctx, "spare bed", 1, 1)
	if err != nil {
		t.Fatalf("creating bed: %v", err)
	}
	if _, _, err := f.service.SowSeed(ctx, empty.ID, bed.PlotIDs[0], "x"); err == nil {
		t.Fatal("sowing from empty lot succeeded")
	}
}

func TestRecordGermination(t *testing.T) {
	f := newFixture(t)
	plant := f.plantInPlot(t, dominantGenotype(), "germ")

	updated, _, err := f.service.RecordGermination(context.Background(), plant.ID)
	if err != nil {
		t.Fatalf("recording germination: %v", err)
	}
	if updated.Stage != core.StageGermination {
		t.Fatalf("stage = %v, want germination", updated.Stage)
	}
	if _, _, err := f.service.RecordGermination(context.Background(), plant.ID); err == nil {
		t.Fatal("second germination succeeded")
	}
}

func TestEmasculateWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plant := f.plantInPlot(t, dominantGenotype(), "em")

	if _, _, err := f.service.EmasculatePlant(ctx, plant.ID); err == nil {
		t.Fatal("emasculated a seed")
	}

	f.forceStage(t, plant.ID, core.StageBudding)
	updated, _, err := f.service.EmasculatePlant(ctx, plant.ID)
	if err != nil {
		t.Fatalf("emasculating at budding: %v", err)
	}
	if !updated.Emasculated || updated.PodCount != 0 {
		t.Fatalf("emasculated=%v pods=%d", updated.Emasculated, updated.PodCount)
	}
	if _, _, err := f.service.EmasculatePlant(ctx, plant.ID); err == nil {
		t.Fatal("emasculated twice")
	}
}

func TestCollectPollenRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.plantInPlot(t, dominantGenotype(), "donor")

	// Not flowering yet: the pollination window rule blocks the commit.
	_, _, err := f.service.CollectPollen(ctx, donor.ID, "early")
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected rule violation, got %v", err)
	}

	f.forceStage(t, donor.ID, core.StageFlowering)
	packet, _, err := f.service.CollectPollen(ctx, donor.ID, "good")
	if err != nil {
		t.Fatalf("collecting pollen: %v", err)
	}
	if packet.DonorID != donor.ID || packet.Used {
		t.Fatalf("unexpected packet: %+v", packet)
	}
	if !packet.Viable(f.now.Add(time.Hour)) {
		t.Fatal("fresh packet not viable")
	}
	if packet.Viable(f.now.Add(core.PollenViability + time.Hour)) {
		t.Fatal("stale packet still viable")
	}
	if diff := cmp.Diff(donor.Genotype, packet.Genotype); diff != "" {
		t.Fatalf("packet genotype mismatch (-want +got):\n%s", diff)
	}
}

func TestControlledCrossAndHarvest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mother := f.plantInPlot(t, recessiveGenotype(), "mother")
	father := f.plantInPlot(t, dominantGenotype(), "father")
	f.forceStage(t, mother.ID, core.StageBudding)
	f.forceStage(t, father.ID, core.StageFlowering)

	if _, _, err := f.service.EmasculatePlant(ctx, mother.ID); err != nil {
		t.Fatalf("emasculating mother: %v", err)
	}
	packet, _, err := f.service.CollectPollen(ctx, father.ID, "father pollen")
	if err != nil {
		t.Fatalf("collecting pollen: %v", err)
	}

	f.forceStage(t, mother.ID, core.StageFlowering)
	pollinated, _, err := f.service.ApplyPollen(ctx, mother.ID, packet.ID)
	if err != nil {
		t.Fatalf("applying pollen: %v", err)
	}
	if pollinated.Pollen == nil || pollinated.Pollen.Kind != core.CrossOutcross {
		t.Fatalf("pollen not recorded: %+v", pollinated.Pollen)
	}
	if pollinated.PodCount < 5 || pollinated.PodCount > 20 {
		t.Fatalf("pod count %d outside 5..20", pollinated.PodCount)
	}
	for _, packets := range f.store.ListPollenPackets() {
		if packets.ID == packet.ID && !packets.Used {
			t.Fatal("packet not marked used")
		}
	}
	// A spent packet cannot fertilise twice.
	if _, _, err := f.service.ApplyPollen(ctx, mother.ID, packet.ID); err == nil {
		t.Fatal("reused a spent packet")
	}

	f.forceStage(t, mother.ID, core.StageMature)
	harvest, _, err := f.service.HarvestPods(ctx, mother.ID)
	if err != nil {
		t.Fatalf("harvesting: %v", err)
	}
	if harvest.Cross.Kind != core.CrossOutcross || harvest.Cross.MotherID != mother.ID || harvest.Cross.FatherID != father.ID {
		t.Fatalf("unexpected cross record: %+v", harvest.Cross)
	}
	if harvest.Cross.SeedCount != len(harvest.Lot.Seeds) || harvest.Cross.SeedCount == 0 {
		t.Fatalf("seed count mismatch: record %d lot %d", harvest.Cross.SeedCount, len(harvest.Lot.Seeds))
	}

	// A recessive mother crossed to a homozygous dominant father gives
	// uniformly heterozygous, dominant-phenotype F1 seed.
	reg := f.service.Registry()
	for i, seed := range harvest.Lot.Seeds {
		if seed.Generation != 1 {
			t.Fatalf("seed %d generation = %d, want 1", i, seed.Generation)
		}
		pheno, err := reg.DerivePhenotype(seed.Genotype)
		if err != nil {
			t.Fatalf("deriving seed %d phenotype: %v", i, err)
		}
		if pheno[genetics.CharSeedShape] != "round" {
			t.Fatalf("seed %d not uniformly dominant: %v", i, pheno)
		}
	}

	harvested, _ := f.store.GetPlant(mother.ID)
	if !harvested.Harvested {
		t.Fatal("plant not marked harvested")
	}
	if _, _, err := f.service.HarvestPods(ctx, mother.ID); err == nil {
		t.Fatal("harvested twice")
	}
}

func TestSelfPollination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plant := f.plantInPlot(t, dominantGenotype(), "selfer")
	f.forceStage(t, plant.ID, core.StageFlowering)

	updated, _, err := f.service.SelfPollinate(ctx, plant.ID)
	if err != nil {
		t.Fatalf("self-pollinating: %v", err)
	}
	if updated.Pollen == nil || updated.Pollen.Kind != core.CrossSelfing || updated.Pollen.DonorID != plant.ID {
		t.Fatalf("unexpected pollen: %+v", updated.Pollen)
	}

	f.forceStage(t, plant.ID, core.StageMature)
	harvest, _, err := f.service.HarvestPods(ctx, plant.ID)
	if err != nil {
		t.Fatalf("harvesting selfed plant: %v", err)
	}
	if harvest.Cross.Kind != core.CrossSelfing {
		t.Fatalf("cross kind = %v, want self", harvest.Cross.Kind)
	}
	for i, seed := range harvest.Lot.Seeds {
		if len(seed.ParentIDs) != 1 || seed.ParentIDs[0] != plant.ID {
			t.Fatalf("seed %d parents = %v, want [%s]", i, seed.ParentIDs, plant.ID)
		}
	}
}

// scriptedSource serves queued Float64 draws, then settles on 0.5. Intn
// always picks index zero so allele draws stay deterministic.
type scriptedSource struct {
	vals []float64
}

func (s *scriptedSource) Float64() float64 {
	if len(s.vals) == 0 {
		return 0.5
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v
}

func (s *scriptedSource) Intn(int) int { return 0 }

func draws(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestHarvestDrawsOvulesPerPod(t *testing.T) {
	// The gauss helper sums 12 Float64 draws, so each scripted block of 12
	// fixes one draw exactly: all zeros clamp low, all ones clamp high,
	// all halves land on the mean. With a fully homozygous selfer the
	// meiosis in between consumes no Float64, so the blocks line up as:
	// sowing threshold (1), pod count (5), then one ovule draw per pod.
	var script []float64
	script = append(script, 0.5)
	script = append(script, draws(0, 12)...)  // pod count -> 5
	script = append(script, draws(1, 12)...)  // pod 1 -> 12 ovules
	script = append(script, draws(0, 12)...)  // pod 2 -> 5 ovules
	// pods 3..5 fall through to 0.5 -> 7 ovules each

	f := &fixture{now: seasonStart}
	f.store = memory.NewStore(core.NewDefaultRulesEngine())
	f.store.SetNowFunc(func() time.Time { return f.now })
	f.service = core.NewService(f.store, nil,
		core.WithRandom(&scriptedSource{vals: script}),
		core.WithClock(func() time.Time { return f.now }),
	)
	ctx := context.Background()

	plant := f.plantInPlot(t, dominantGenotype(), "selfer")
	f.forceStage(t, plant.ID, core.StageFlowering)
	pollinated, _, err := f.service.SelfPollinate(ctx, plant.ID)
	if err != nil {
		t.Fatalf("self-pollinating: %v", err)
	}
	if pollinated.PodCount != 5 {
		t.Fatalf("pod count = %d, want 5", pollinated.PodCount)
	}

	f.forceStage(t, plant.ID, core.StageMature)
	harvest, _, err := f.service.HarvestPods(ctx, plant.ID)
	if err != nil {
		t.Fatalf("harvesting: %v", err)
	}
	if got, want := len(harvest.Lot.Seeds), 12+5+7+7+7; got != want {
		t.Fatalf("harvested %d seeds, want %d", got, want)
	}
	// Pods fill independently, so the total is not pod count times one
	// shared ovule draw.
	if len(harvest.Lot.Seeds)%pollinated.PodCount == 0 {
		t.Fatalf("seed total %d is a flat multiple of %d pods", len(harvest.Lot.Seeds), pollinated.PodCount)
	}
}

func TestEmasculatedPlantCannotSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plant := f.plantInPlot(t, dominantGenotype(), "barren")
	f.forceStage(t, plant.ID, core.StageBudding)
	if _, _, err := f.service.EmasculatePlant(ctx, plant.ID); err != nil {
		t.Fatalf("emasculating: %v", err)
	}
	f.forceStage(t, plant.ID, core.StageFlowering)
	if _, _, err := f.service.SelfPollinate(ctx, plant.ID); err == nil {
		t.Fatal("emasculated plant selfed")
	}

	f.forceStage(t, plant.ID, core.StageMature)
	if _, _, err := f.service.HarvestPods(ctx, plant.ID); err == nil {
		t.Fatal("harvested a plant that set no seed")
	}
}

func TestAdvanceDayProgression(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plant := f.plantInPlot(t, dominantGenotype(), "grower")

	mild := season.Weather{MeanC: 15, MinC: 9, MaxC: 21, NoonC: 20, Cloud: 5, AmpScale: 0.75}
	soil := season.Soil{TempC: 14, Moisture: 0.5}

	var becameFlowering bool
	for day := 0; day < 12; day++ {
		f.now = f.now.Add(24 * time.Hour)
		summary, _, err := f.service.AdvanceDay(ctx, mild, soil, 45)
		if err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		if stage, ok := summary.StageChanges[plant.ID]; ok && stage >= core.StageFlowering {
			becameFlowering = true
		}
		if len(summary.Deaths) != 0 {
			t.Fatalf("day %d unexpected deaths: %v", day, summary.Deaths)
		}
	}
	if !becameFlowering {
		t.Fatal("plant never reached flowering under steady warmth")
	}

	current, _ := f.store.GetPlant(plant.ID)
	if current.GDD != 45*12 {
		t.Fatalf("accumulated gdd = %v, want %v", current.GDD, 45*12)
	}
	if current.AgeDays != 12 {
		t.Fatalf("age = %d, want 12", current.AgeDays)
	}
}

func TestAdvanceDayLethalFreeze(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plant := f.plantInPlot(t, dominantGenotype(), "victim")

	freeze := season.Weather{MeanC: -12, MinC: -20, MaxC: -6}
	summary, _, err := f.service.AdvanceDay(ctx, freeze, season.Soil{TempC: -5}, 0)
	if err != nil {
		t.Fatalf("advancing day: %v", err)
	}
	if len(summary.Deaths) != 1 || summary.Deaths[0] != plant.ID {
		t.Fatalf("deaths = %v, want [%s]", summary.Deaths, plant.ID)
	}
	dead, _ := f.store.GetPlant(plant.ID)
	if dead.Alive || dead.CauseOfDeath == nil {
		t.Fatalf("plant not marked dead: alive=%v cause=%v", dead.Alive, dead.CauseOfDeath)
	}
}

func TestSelfingStartsAtPodFill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plant := f.plantInPlot(t, dominantGenotype(), "natural")

	mild := season.Weather{MeanC: 16, MinC: 10, MaxC: 22, NoonC: 21, Cloud: 5, AmpScale: 0.75}
	soil := season.Soil{TempC: 15, Moisture: 0.5}
	for day := 0; day < 18; day++ {
		f.now = f.now.Add(24 * time.Hour)
		if _, _, err := f.service.AdvanceDay(ctx, mild, soil, 45); err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
	}

	current, _ := f.store.GetPlant(plant.ID)
	if current.Stage < core.StagePodFill {
		t.Fatalf("stage = %v, want pod fill or later", current.Stage)
	}
	if current.Pollen == nil || current.Pollen.Kind != core.CrossSelfing {
		t.Fatalf("natural selfing not applied: %+v", current.Pollen)
	}
	if current.PodCount == 0 {
		t.Fatal("no pods developed")
	}
}

func TestTickHourAndWatering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plant := f.plantInPlot(t, dominantGenotype(), "thirsty")

	for i := 0; i < 5; i++ {
		if _, err := f.service.TickHour(ctx, 28, season.SkyClear); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	dried, _ := f.store.GetPlant(plant.ID)
	if dried.Water >= 50 {
		t.Fatalf("water = %v after five hot hours, want below 50", dried.Water)
	}

	watered, _, err := f.service.WaterPlant(ctx, plant.ID, season.PhaseMorning)
	if err != nil {
		t.Fatalf("watering: %v", err)
	}
	if watered.Water <= dried.Water {
		t.Fatal("watering did not raise water")
	}
	if watered.Health != dried.Health {
		t.Fatalf("morning watering cost health: %v -> %v", dried.Health, watered.Health)
	}

	noon, _, err := f.service.WaterPlant(ctx, plant.ID, season.PhaseNoon)
	if err != nil {
		t.Fatalf("noon watering: %v", err)
	}
	if noon.Health >= watered.Health {
		t.Fatal("noon watering carried no penalty")
	}
}

func TestSeasonLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, _, err := f.service.StartSeason(ctx, 1856)
	if err != nil {
		t.Fatalf("starting season: %v", err)
	}

	plant := f.plantInPlot(t, dominantGenotype(), "season plant")
	f.forceStage(t, plant.ID, core.StageFlowering)
	if _, _, err := f.service.SelfPollinate(ctx, plant.ID); err != nil {
		t.Fatalf("selfing: %v", err)
	}
	f.forceStage(t, plant.ID, core.StageMature)
	harvest, _, err := f.service.HarvestPods(ctx, plant.ID)
	if err != nil {
		t.Fatalf("harvesting: %v", err)
	}

	notes := "first trial season"
	closed, _, err := f.service.CloseSeason(ctx, record.ID, &notes)
	if err != nil {
		t.Fatalf("closing season: %v", err)
	}
	if closed.EndedAt == nil {
		t.Fatal("season not stamped closed")
	}
	if closed.PlantsSown != 1 || closed.CrossCount != 1 {
		t.Fatalf("tallies: sown=%d crosses=%d, want 1/1", closed.PlantsSown, closed.CrossCount)
	}
	if closed.SeedsHarvested != harvest.Cross.SeedCount {
		t.Fatalf("seeds harvested = %d, want %d", closed.SeedsHarvested, harvest.Cross.SeedCount)
	}

	archived, _, err := f.service.AttachArchive(ctx, record.ID, "seasons/1856/archive.json")
	if err != nil {
		t.Fatalf("attaching archive: %v", err)
	}
	if archived.ArchiveKey == nil || *archived.ArchiveKey != "seasons/1856/archive.json" {
		t.Fatalf("archive key = %v", archived.ArchiveKey)
	}
}

func TestMetricsRecorderObservesOperations(t *testing.T) {
	f := newFixture(t)
	rec := core.NewExpvarMetricsRecorder("")
	f.service = core.NewService(f.store, nil,
		core.WithRandom(rand.New(rand.NewSource(5))),
		core.WithClock(func() time.Time { return f.now }),
		core.WithMetrics(rec),
	)

	if _, _, err := f.service.CreateBed(context.Background(), "metered", 1, 1); err != nil {
		t.Fatalf("creating bed: %v", err)
	}
	snap := rec.Snapshot()
	if snap.Results["create_bed"]["success"] != 1 {
		t.Fatalf("create_bed success count = %d, want 1", snap.Results["create_bed"]["success"])
	}
}
