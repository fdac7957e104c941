/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/friendsincode/heimdall_stage/internal/config"
	"github.com/friendsincode/heimdall_stage/internal/db"
	"github.com/friendsincode/heimdall_stage/internal/models"
	"github.com/friendsincode/heimdall_stage/internal/store"
)

var seedReplace bool

var seedCmd = &cobra.Command{
	Use:   "seed <schedule.yaml>",
	Short: "Load a running order into the schedule store",
	Long: `Load a running order from a YAML file into the database.

The file lists acts with their scheduled times:

  acts:
    - name: Opener
      start: "19:00"
      end: "19:30"
    - name: Headliner
      start: "19:30"
      end: "20:30"
      notes: pyro cues at the top of the set

Only the database backends support seeding; the sheets backend is edited
in the spreadsheet itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedReplace, "replace", false, "Delete existing acts before loading")
	rootCmd.AddCommand(seedCmd)
}

// scheduleFile is the YAML shape accepted by the seed command.
type scheduleFile struct {
	Acts []struct {
		Name  string `yaml:"name"`
		Start string `yaml:"start"`
		End   string `yaml:"end"`
		Notes string `yaml:"notes"`
	} `yaml:"acts"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	switch cfg.StoreBackend {
	case config.StorePostgres, config.StoreMySQL, config.StoreSQLite:
	default:
		return fmt.Errorf("seed requires a database backend, store is %q", cfg.StoreBackend)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read schedule file: %w", err)
	}

	var file scheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse schedule file: %w", err)
	}
	if len(file.Acts) == 0 {
		return fmt.Errorf("schedule file lists no acts")
	}

	acts := make([]models.Act, 0, len(file.Acts))
	for i, entry := range file.Acts {
		if entry.Name == "" {
			return fmt.Errorf("act %d has no name", i+1)
		}
		start, ok := models.ParseClock(entry.Start)
		if !ok {
			return fmt.Errorf("act %q has invalid start %q", entry.Name, entry.Start)
		}
		end, ok := models.ParseClock(entry.End)
		if !ok {
			return fmt.Errorf("act %q has invalid end %q", entry.Name, entry.End)
		}
		acts = append(acts, models.Act{
			ID:             uuid.NewString(),
			ActName:        entry.Name,
			ScheduledStart: start,
			ScheduledEnd:   end,
			Notes:          entry.Notes,
		})
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close(database)

	if err := store.NewGormStore(database).Migrate(); err != nil {
		return fmt.Errorf("migrate schedule store: %w", err)
	}

	if seedReplace {
		if err := database.Where("1 = 1").Delete(&models.Act{}).Error; err != nil {
			return fmt.Errorf("clear existing acts: %w", err)
		}
		logger.Info().Msg("existing acts deleted")
	}

	for _, act := range acts {
		if err := database.Create(&act).Error; err != nil {
			return fmt.Errorf("create act %q: %w", act.ActName, err)
		}
		logger.Info().
			Str("act", act.ActName).
			Str("start", act.ScheduledStart.String()).
			Str("end", act.ScheduledEnd.String()).
			Msg("act loaded")
	}

	logger.Info().Int("acts", len(acts)).Msg("running order seeded")
	return nil
}
