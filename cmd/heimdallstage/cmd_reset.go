/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/heimdall_stage/internal/config"
	"github.com/friendsincode/heimdall_stage/internal/db"
	"github.com/friendsincode/heimdall_stage/internal/store"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all actual times from the running order",
	Long: `Clear the actual start and end times from every act, returning the
show to its pre-show state. Scheduled times are untouched.

Examples:
  # Interactive reset (will prompt for confirmation)
  heimdallstage reset

  # Force reset without confirmation
  heimdallstage reset --force
`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	if !resetForce {
		fmt.Print("This clears every recorded actual time. Type 'yes' to confirm: ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(strings.ToLower(response)) != "yes" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	ctx := context.Background()

	scheduleStore, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	acts, err := scheduleStore.ListActs(ctx)
	if err != nil {
		return fmt.Errorf("list acts: %w", err)
	}

	for _, act := range acts {
		if !act.Started() && !act.Ended() {
			continue
		}
		if _, err := scheduleStore.ClearActualTimes(ctx, act.ActName); err != nil {
			return fmt.Errorf("clear act %q: %w", act.ActName, err)
		}
		logger.Info().Str("act", act.ActName).Msg("actual times cleared")
	}

	logger.Info().Int("acts", len(acts)).Msg("show reset")
	return nil
}

// openStore builds the configured schedule store for CLI use.
func openStore(ctx context.Context) (store.Store, func() error, error) {
	switch cfg.StoreBackend {
	case config.StoreSheets:
		sheetsStore, err := store.NewSheetsStore(ctx, store.SheetsConfig{
			SpreadsheetID:   cfg.SheetsID,
			Tab:             cfg.SheetsTab,
			CredentialsFile: cfg.SheetsCredentialsFile,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init sheets store: %w", err)
		}
		return sheetsStore, func() error { return nil }, nil

	case config.StorePostgres, config.StoreMySQL, config.StoreSQLite:
		database, err := db.Connect(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return store.NewGormStore(database), func() error { return db.Close(database) }, nil

	default:
		return nil, nil, fmt.Errorf("reset requires a persistent backend, store is %q", cfg.StoreBackend)
	}
}
