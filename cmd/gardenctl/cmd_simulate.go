package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"gardencore/internal/archive"
	"gardencore/internal/climate"
	"gardencore/internal/config"
	"gardencore/internal/core"
	"gardencore/internal/garden"
	"gardencore/internal/season"
	"gardencore/pkg/genetics"
)

var simulateFlags struct {
	days   int
	plants int
	store  string
	dbPath string
	dsn    string
	export bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a garden season headless",
	Long: "Simulate sows a bed of F1 hybrid peas, steps the garden hour by\n" +
		"hour under the configured climate, and closes the season with a\n" +
		"harvest tally. With --export the season archive is written to the\n" +
		"configured blob store.",
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVar(&simulateFlags.days, "days", 0, "Days to simulate (config default when 0)")
	f.IntVar(&simulateFlags.plants, "plants", 24, "Plants to sow")
	f.StringVar(&simulateFlags.store, "store", "memory", "Persistence backend: memory, sqlite, or postgres")
	f.StringVar(&simulateFlags.dbPath, "db", "gardencore.db", "SQLite database path")
	f.StringVar(&simulateFlags.dsn, "dsn", "", "Postgres connection string")
	f.BoolVar(&simulateFlags.export, "export", false, "Export the season archive after closing")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	days := simulateFlags.days
	if days == 0 {
		days = cfg.Simulation.Days
	}
	logger := newLogger(cfg.Logging.Level)
	metrics := core.NewExpvarMetricsRecorder("gardenctl")

	store, closeStore, err := openStore(simulateFlags.store, simulateFlags.dbPath, simulateFlags.dsn)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	clim, err := climate.New(climate.Config{Mode: climate.Mode(cfg.Climate.Mode), Seed: cfg.Climate.Seed})
	if err != nil {
		return err
	}
	start, err := cfg.Simulation.StartTime()
	if err != nil {
		return err
	}
	eng, service := garden.NewSimulation(store, clim, garden.Config{Start: start},
		[]core.Option{
			core.WithRandom(rand.New(rand.NewSource(cfg.Simulation.Seed))),
			core.WithLogger(logger),
			core.WithMetrics(metrics),
		},
		garden.WithLogger(logger),
	)
	store.SetNowFunc(eng.Now)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	seasonRec, _, err := service.StartSeason(ctx, start.Year())
	if err != nil {
		return fmt.Errorf("starting season: %w", err)
	}
	if err := sowHybridBed(ctx, service, simulateFlags.plants); err != nil {
		return err
	}
	fmt.Fprintf(out, "Sowed %d F1 hybrid peas on %s\n", simulateFlags.plants, start.Format("2 January 2006"))

	for day := 0; day < days; day++ {
		for _, plant := range store.ListPlants() {
			if !plant.Alive {
				continue
			}
			if _, _, err := service.WaterPlant(ctx, plant.ID, season.PhaseMorning); err != nil {
				return fmt.Errorf("watering %s: %w", plant.ID, err)
			}
		}
		if err := eng.RunDays(ctx, 1); err != nil {
			return fmt.Errorf("day %d: %w", day+1, err)
		}
	}

	closed, _, err := service.CloseSeason(ctx, seasonRec.ID, nil)
	if err != nil {
		return fmt.Errorf("closing season: %w", err)
	}
	report := eng.Report()
	fmt.Fprintf(out, "Season %d closed after %d days\n", closed.Year, report.Days)
	fmt.Fprintf(out, "  sown: %d  died: %d  crosses: %d  seeds harvested: %d\n",
		closed.PlantsSown, closed.PlantsDied, closed.CrossCount, closed.SeedsHarvested)
	ok, reason := eng.SowingAdvice()
	fmt.Fprintf(out, "  sowing window now: %v (%s)\n", ok, reason)

	if !simulateFlags.export {
		return nil
	}
	blobs, err := openBlobs(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	archiver := archive.New(service, blobs, archive.WithLogger(logger))
	worker := archive.NewWorker(archiver, cfg.Archive.QueueSize, archive.WithWorkerLogger(logger), archive.WithWorkerMetrics(metrics))
	worker.Start(ctx)
	if err := worker.Enqueue(closed.ID); err != nil {
		return err
	}
	worker.Close()
	for _, entry := range worker.Audit() {
		if entry.Error != "" {
			return fmt.Errorf("archiving season %s: %s", entry.SeasonID, entry.Error)
		}
		fmt.Fprintf(out, "Archived season to %s in %s\n", entry.ArchiveKey, entry.Duration)
	}
	return printRatioChecks(out, archiver, service.Registry(), closed.ID)
}

// sowHybridBed lays out a bed sized for n plants and sows n seeds from a
// fully heterozygous F1 lot.
func sowHybridBed(ctx context.Context, service *core.Service, n int) error {
	cols := 6
	rows := (n + cols - 1) / cols
	bed, _, err := service.CreateBed(ctx, "trial bed", rows, cols)
	if err != nil {
		return fmt.Errorf("creating bed: %w", err)
	}
	seeds := make([]core.Seed, n)
	for i := range seeds {
		seeds[i] = core.Seed{Genotype: hybridGenotype()}
	}
	lot, _, err := service.CreateSeedLot(ctx, core.SeedLot{Name: "F1 hybrids", Seeds: seeds})
	if err != nil {
		return fmt.Errorf("creating seed lot: %w", err)
	}
	for i := 0; i < n; i++ {
		label := fmt.Sprintf("plant %d", i+1)
		if _, _, err := service.SowSeed(ctx, lot.ID, bed.PlotIDs[i], label); err != nil {
			return fmt.Errorf("sowing %s: %w", label, err)
		}
	}
	return nil
}

func hybridGenotype() genetics.Genotype {
	return genetics.Genotype{
		genetics.LocusSeedShape:     {"R", "r"},
		genetics.LocusSeedColor:     {"I", "i"},
		genetics.LocusFlowerColor:   {"A", "a"},
		genetics.LocusPlantHeight:   {"Le", "le"},
		genetics.LocusPodColor:      {"Gp", "gp"},
		genetics.LocusPodParchment:  {"P", "p"},
		genetics.LocusPodValve:      {"V", "v"},
		genetics.LocusFasciation:    {"Fa", "fa"},
		genetics.LocusFasciationMod: {"Mfa", "mfa"},
	}
}
