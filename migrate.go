package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashkam58/pythongrade3/internal/progress"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := progress.Open(loaded.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		applied, err := progress.Migrate(cmd.Context(), db)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
