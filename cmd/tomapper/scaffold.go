package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tomapper/internal/analyze"
	"tomapper/internal/check"
	"tomapper/mapping"
)

var (
	scaffoldPatterns []string
	scaffoldSuffix   string
	scaffoldOutput   string
)

func init() {
	scaffoldCmd.Flags().StringSliceVarP(&scaffoldPatterns, "packages", "p", []string{"."}, "package patterns to scan for transfer types")
	scaffoldCmd.Flags().StringVar(&scaffoldSuffix, "suffix", "TO", "name suffix of transfer types")
	scaffoldCmd.Flags().StringVarP(&scaffoldOutput, "output", "o", "", "write the mapping file here instead of stdout")
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Write a mapping file for transfer types found by name",
	Long: `Pairs every struct X<suffix> with a struct X and writes a mapping file.
Field renames are guessed from name similarity; fields without a likely
counterpart are ignored. Review the result before use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		graph, err := analyze.NewAnalyzer().LoadPackages(cmd.Context(), scaffoldPatterns...)
		if err != nil {
			return err
		}

		pkgs := make([]string, 0, len(graph.Packages))
		for path := range graph.Packages {
			pkgs = append(pkgs, path)
		}

		sort.Strings(pkgs)

		f, skipped := check.Scaffold(graph, pkgs, scaffoldSuffix)
		for _, s := range skipped {
			logger.Warn("no domain type found", zap.String("transfer", s))
		}

		if scaffoldOutput != "" {
			if err := mapping.WriteFile(f, scaffoldOutput); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "wrote %d mapping(s) to %s\n", len(f.Mappings), scaffoldOutput)

			return nil
		}

		data, err := mapping.Marshal(f)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	},
}
