package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"patient-care-portal/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Patient care portal API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), classifyCmd())

	if err := root.Execute(); err != nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", "patient-care-portal").Logger()
}
