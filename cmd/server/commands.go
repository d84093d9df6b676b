package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"patient-care-portal/internal/config"
	"patient-care-portal/internal/patient"
	"patient-care-portal/internal/platform/database"
	"patient-care-portal/internal/triage"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithDatabase()
			if err != nil {
				return err
			}
			if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
				return err
			}
			return printVersion(cmd, cfg.DatabaseURL)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithDatabase()
			if err != nil {
				return err
			}
			if err := database.MigrateDown(cfg.DatabaseURL, steps); err != nil {
				return err
			}
			return printVersion(cmd, cfg.DatabaseURL)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithDatabase()
			if err != nil {
				return err
			}
			return printVersion(cmd, cfg.DatabaseURL)
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func loadWithDatabase() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.HasDatabase() {
		return nil, errNoDatabase
	}
	return cfg, nil
}

func printVersion(cmd *cobra.Command, dsn string) error {
	v, dirty, err := database.Version(dsn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%v)\n", v, dirty)
	return nil
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo patient if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithDatabase()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			db, err := database.Open(cmd.Context(), cfg.DatabaseURL, cfg.DBConnectRetries, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			inserted, err := patient.Seed(cmd.Context(), patient.NewRepository(db))
			if err != nil {
				return err
			}
			if inserted {
				fmt.Fprintf(cmd.OutOrStdout(), "seeded demo patient %s\n", patient.DemoPatientID)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "patients already present, nothing to do")
			}
			return nil
		},
	}
}

// classifyCmd runs the urgency rules offline, without calling the
// completion backend.
func classifyCmd() *cobra.Command {
	var (
		symptoms []string
		pain     int
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify symptom urgency from the command line",
		Example: `  portal classify --symptom "Chest pain or pressure" --pain 6
  portal classify --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("list"); list {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(triage.Vocabulary, "\n"))
				return nil
			}

			set := triage.NewSymptomSet(symptoms...)
			level, err := triage.ClassifyUrgency(set, pain)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "urgency:  %s (%s)\n", level, level.Label())
			fmt.Fprintf(out, "pain:     %d/10 %s\n", pain, triage.PainSeverity(pain))
			if level.RequiresEmergencyProtocol() {
				fmt.Fprintln(out)
				fmt.Fprintln(out, triage.EmergencyProtocol)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&symptoms, "symptom", nil, "symptom tag (repeatable)")
	cmd.Flags().IntVar(&pain, "pain", 0, "pain level 0-10")
	cmd.Flags().Bool("list", false, "print the symptom vocabulary")
	return cmd
}

