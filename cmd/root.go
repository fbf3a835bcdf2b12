// Package cmd is the folio command line.
package cmd

import (
	"os"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

func newRootCMD() *cobra.Command {
	root := &cobra.Command{
		Use:           "folio",
		Short:         "folio",
		Long:          `portfolio site with a blog and its admin`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("log-level", "info", "`debug/info/warn/error`")

	root.AddCommand(
		newServeCMD(),
		newMigrateCMD(),
		newUserCMD(),
		newPostCMD(),
		newTaxonomyCMD(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCMD().Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.New("folio")
	logger.SetOutput(cmd.ErrOrStderr())
	lvl, _ := cmd.Flags().GetString("log-level")
	switch lvl {
	case "debug":
		logger.SetLevel(log.DEBUG)
	case "warn":
		logger.SetLevel(log.WARN)
	case "error":
		logger.SetLevel(log.ERROR)
	default:
		logger.SetLevel(log.INFO)
	}
	return logger
}
