package cmd

import (
	"github.com/spf13/cobra"
)

func newMigrateCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "migrate",
		Long:  `bring the database schema to the latest version`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), newLogger(cmd))
			if err != nil {
				return err
			}
			defer a.Close()
			cmd.Println("database schema is up to date")
			return nil
		},
	}
}
