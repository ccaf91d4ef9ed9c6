// Command tomapper checks and scaffolds transfer object mapping files.
//
// The mapping engine itself is a library; the command works offline on Go
// packages:
//   - check validates a mapping file against the packages it names
//   - scaffold writes a first mapping file from naming conventions
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tomapper/options"
)

var (
	// Version information, set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	configPath string
	logger     = zap.NewNop()
	cfg        = options.Default()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tomapper",
		Short: "Transfer object mapping tooling",
		Long: `tomapper checks mapping files between transfer objects and domain objects
against the Go packages that declare them, and scaffolds new mapping files.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (yaml, json or toml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scaffoldCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(*cobra.Command, []string) error {
	c, err := options.Load(configPath)
	if err != nil {
		return err
	}

	l, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, logger = c, l

	return nil
}
