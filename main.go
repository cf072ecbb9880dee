// main.go
//
// Entry point for the Python Funfair server.
// Commands:
//   - serve    run the HTTP API (default when no command is given)
//   - migrate  apply embedded SQL migrations and exit
//   - ask      put one question to the coding tutor from the terminal
//
// Configuration comes from the environment; see internal/config.

package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ashkam58/pythongrade3/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "funfair",
	Short: "Python Funfair & City game server",
	Long:  `Backend for the Python Funfair & City: nine coding mini-games, a daily bug challenge and a friendly tutor.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.SetupLogging()
		loaded = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), loaded)
	},
}

// loaded is the configuration parsed before any command runs.
var loaded config.Config

func init() {
	rootCmd.SilenceUsage = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("funfair exited")
		os.Exit(1)
	}
}
