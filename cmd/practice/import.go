package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/practice/internal/database"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <fixture.yaml>",
		Short: "Load clients, firms, reference data and engagements from YAML",
		Long: `Load master data from a YAML file. Every entry is validated before
anything is written; one bad entry aborts the whole import. Partners and
admins only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open fixture: %w", err)
			}
			defer file.Close()

			fixture, err := database.LoadFixture(file)
			if err != nil {
				return err
			}

			n, err := a.svc.ImportFixture(cmd.Context(), fixture)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d documents from %s\n", n, args[0])
			return nil
		},
	}
}
