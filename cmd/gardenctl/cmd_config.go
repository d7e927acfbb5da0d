package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gardencore/internal/config"
)

var configFlags struct {
	out string
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective configuration to a file",
	Long: "Config resolves the embedded defaults plus any --config overrides\n" +
		"and writes the merged result, ready to edit and pass back in.",
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVar(&configFlags.out, "out", "garden.yaml", "Destination file")
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	if err := cfg.WriteYAML(configFlags.out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configFlags.out)
	return nil
}
