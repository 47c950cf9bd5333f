// File path: cmd/animalert/seed.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animalert/animalert/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load reference data and templates from a YAML file",
	Long: `Upserts document types, institutions, categories (with their
institution routing order) and incident templates. Template HTML may be
inline or in files referenced relative to the seed file. Running the same
seed twice leaves the database unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	seed, err := store.LoadSeed(args[0])
	if err != nil {
		return err
	}
	st, err := store.Open("")
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.ApplySeed(cmd.Context(), seed); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories, %d institutions, %d templates\n",
		len(seed.Categories), len(seed.Institutions), len(seed.Templates))
	return nil
}
