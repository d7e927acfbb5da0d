// Command gardenctl runs the pea garden simulation headless, inspects the
// trait registry, and exports season archives.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "gardenctl",
	Short: "Mendelian pea garden simulator",
	Long: "Gardenctl grows pea plants under a reconstructed Brno climate,\n" +
		"records controlled crosses, and archives each season's harvest\n" +
		"for phenotype-ratio analysis.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "Path to a YAML config file (embedded defaults when empty)")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(traitsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
