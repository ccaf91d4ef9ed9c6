package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tomapper/internal/analyze"
	"tomapper/internal/check"
	"tomapper/internal/diagnostic"
	"tomapper/mapping"
)

var (
	checkMappings   []string
	checkPatterns   []string
	checkConverters []string
	checkDump       bool
	checkStrict     bool
)

func init() {
	checkCmd.Flags().StringSliceVarP(&checkMappings, "mapping", "m", nil, "mapping file(s), defaults to mapping_files of the configuration")
	checkCmd.Flags().StringSliceVarP(&checkPatterns, "packages", "p", []string{"./..."}, "package patterns declaring the mapped types")
	checkCmd.Flags().StringSliceVar(&checkConverters, "converter", nil, "converter names registered by the application")
	checkCmd.Flags().BoolVar(&checkDump, "dump", false, "dump the parsed mapping files")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "treat warnings as errors")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate mapping files against Go packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		files := checkMappings
		if len(files) == 0 {
			files = cfg.MappingFiles
		}

		if len(files) == 0 {
			return errors.New("no mapping file given, use --mapping or mapping_files")
		}

		graph, err := analyze.NewAnalyzer().LoadPackages(cmd.Context(), checkPatterns...)
		if err != nil {
			return err
		}

		logger.Debug("packages loaded", zap.Strings("patterns", checkPatterns), zap.Int("types", len(graph.IDs())))

		checker := check.New(graph, checkConverters...)
		failed := false

		for _, path := range files {
			f, err := mapping.LoadFile(path)
			if err != nil {
				return err
			}

			if checkDump {
				spew.Fdump(cmd.OutOrStdout(), f)
			}

			ds := checker.Check(f)
			printDiagnostics(cmd.OutOrStdout(), path, ds)

			if ds.HasErrors() || (checkStrict && len(ds.Warnings) > 0) {
				failed = true
			}
		}

		if failed {
			return errors.New("mapping check failed")
		}

		return nil
	},
}

func printDiagnostics(w io.Writer, path string, ds *diagnostic.Diagnostics) {
	all := ds.All()
	if len(all) == 0 {
		fmt.Fprintf(w, "%s: %s\n", path, color.GreenString("ok"))
		return
	}

	for _, d := range all {
		fmt.Fprintf(w, "%s: %s %s\n", path, severityColor(d.Severity).Sprint(d.Severity), d)
	}

	fmt.Fprintf(w, "%s: %d error(s), %d warning(s)\n", path, len(ds.Errors), len(ds.Warnings))
}

func severityColor(s diagnostic.Severity) *color.Color {
	switch s {
	case diagnostic.SeverityError:
		return color.New(color.FgRed, color.Bold)
	case diagnostic.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgHiBlack)
	}
}

