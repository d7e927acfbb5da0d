package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"gardencore/internal/archive"
	"gardencore/internal/config"
	"gardencore/internal/core"
	"gardencore/pkg/genetics"
)

var exportFlags struct {
	year   int
	store  string
	dbPath string
	dsn    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a season archive from a persisted garden",
	Long: "Export re-opens a persisted garden, snapshots the season for the\n" +
		"given year to the configured blob store, and prints the phenotype\n" +
		"ratio checks over its selfed crosses.",
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.IntVar(&exportFlags.year, "year", 0, "Season year to export (required)")
	f.StringVar(&exportFlags.store, "store", "sqlite", "Persistence backend: sqlite or postgres")
	f.StringVar(&exportFlags.dbPath, "db", "gardencore.db", "SQLite database path")
	f.StringVar(&exportFlags.dsn, "dsn", "", "Postgres connection string")
	_ = exportCmd.MarkFlagRequired("year")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging.Level)

	store, closeStore, err := openStore(exportFlags.store, exportFlags.dbPath, exportFlags.dsn)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	var seasonID string
	for _, rec := range store.ListSeasonRecords() {
		if rec.Year == exportFlags.year {
			seasonID = rec.ID
			break
		}
	}
	if seasonID == "" {
		return fmt.Errorf("no season record for year %d", exportFlags.year)
	}

	ctx := cmd.Context()
	blobs, err := openBlobs(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	service := core.NewService(store, nil, core.WithLogger(logger))
	archiver := archive.New(service, blobs, archive.WithLogger(logger))

	snap, err := archiver.ExportSeason(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("exporting season %d: %w", exportFlags.year, err)
	}
	archiveKey, plantsKey, crossesKey := snap.Keys()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Exported season %d:\n", exportFlags.year)
	for _, key := range []string{archiveKey, plantsKey, crossesKey} {
		fmt.Fprintf(out, "  %s\n", key)
	}
	return printRatioChecks(out, archiver, service.Registry(), seasonID)
}

// printRatioChecks renders the single-locus segregation tests for a season's
// selfed crosses, one line per character with counts and the chi-square fit.
func printRatioChecks(out io.Writer, archiver *archive.Archiver, reg *genetics.Registry, seasonID string) error {
	snap, err := archiver.BuildSnapshot(seasonID)
	if err != nil {
		return err
	}
	tests, err := archive.SegregationChecks(snap, reg)
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		fmt.Fprintln(out, "No selfed heterozygous crosses to test.")
		return nil
	}
	fmt.Fprintln(out, "Segregation against 3:1 expectation:")
	for _, test := range tests {
		classes := make([]string, 0, len(test.Observed))
		for class := range test.Observed {
			classes = append(classes, class)
		}
		sort.Strings(classes)
		fmt.Fprintf(out, "  %-16s", test.Character)
		for _, class := range classes {
			fmt.Fprintf(out, " %s=%d", class, test.Observed[class])
		}
		fmt.Fprintf(out, "  chi2=%.3f p=%.3f\n", test.ChiSquare, test.PValue)
	}
	return nil
}
