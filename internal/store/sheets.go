/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/friendsincode/heimdall_stage/internal/models"
)

// Column letters in the production running-order sheet. The sheet is
// operator-maintained: column B holds the act name, D/E the scheduled
// times and F/G the actual times. Rows 1-5 are headers and decoration.
const (
	sheetColActName        = "B"
	sheetColScheduledStart = "D"
	sheetColScheduledEnd   = "E"
	sheetColActualStart    = "F"
	sheetColActualEnd      = "G"

	sheetHeaderRows = 5
)

// zero-based indices into a fetched row, matching the letters above.
const (
	sheetIdxActName        = 1
	sheetIdxScheduledStart = 3
	sheetIdxScheduledEnd   = 4
	sheetIdxActualStart    = 5
	sheetIdxActualEnd      = 6
)

// SheetsConfig selects the spreadsheet backing the running order.
type SheetsConfig struct {
	SpreadsheetID   string
	Tab             string // empty means the first sheet
	CredentialsFile string // service account JSON key path
}

// SheetsStore reads and writes the running order in a Google Sheet. Every
// operation re-reads the sheet: the spreadsheet is the source of truth and
// stage crew may edit it directly between calls.
type SheetsStore struct {
	svc *sheets.Service
	cfg SheetsConfig
}

// NewSheetsStore authenticates against the Sheets API with the service
// account key and returns a store bound to the configured spreadsheet.
func NewSheetsStore(ctx context.Context, cfg SheetsConfig) (*SheetsStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets store requires a spreadsheet id")
	}

	keyJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, keyJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &SheetsStore{svc: svc, cfg: cfg}, nil
}

func (s *SheetsStore) rangeName(ref string) string {
	if s.cfg.Tab == "" {
		return ref
	}
	return fmt.Sprintf("'%s'!%s", s.cfg.Tab, ref)
}

// fetchRows returns all data rows (header rows stripped). The returned
// index maps act names to their 1-based sheet row numbers.
func (s *SheetsStore) fetchRows(ctx context.Context) ([][]any, map[string]int, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, s.rangeName("A:G")).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet: %w", err)
	}

	var rows [][]any
	if len(resp.Values) > sheetHeaderRows {
		rows = resp.Values[sheetHeaderRows:]
	}

	index := make(map[string]int, len(rows))
	for i, row := range rows {
		name := cellString(row, sheetIdxActName)
		if name != "" {
			index[name] = i + sheetHeaderRows + 1
		}
	}
	return rows, index, nil
}

func (s *SheetsStore) ListActs(ctx context.Context) ([]models.Act, error) {
	rows, _, err := s.fetchRows(ctx)
	if err != nil {
		return nil, err
	}

	var acts []models.Act
	for _, row := range rows {
		actName := cellString(row, sheetIdxActName)
		scheduledStart, startOK := models.ParseClock(cellString(row, sheetIdxScheduledStart))
		scheduledEnd, endOK := models.ParseClock(cellString(row, sheetIdxScheduledEnd))
		// Rows missing a name or the scheduled times are decoration, not acts.
		if actName == "" || !startOK || !endOK {
			continue
		}

		act := models.Act{
			ActName:        actName,
			ScheduledStart: scheduledStart,
			ScheduledEnd:   scheduledEnd,
		}
		if c, ok := models.ParseClock(cellString(row, sheetIdxActualStart)); ok {
			act.ActualStart = &c
		}
		if c, ok := models.ParseClock(cellString(row, sheetIdxActualEnd)); ok {
			act.ActualEnd = &c
		}
		acts = append(acts, act)
	}
	return acts, nil
}

func (s *SheetsStore) GetAct(ctx context.Context, actName string) (*models.Act, error) {
	acts, err := s.ListActs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range acts {
		if acts[i].ActName == actName {
			return &acts[i], nil
		}
	}
	return nil, ErrActNotFound
}

func (s *SheetsStore) SetActualStart(ctx context.Context, actName string, t models.Clock) (*models.Act, error) {
	if err := s.writeCell(ctx, actName, sheetColActualStart, t.String()); err != nil {
		return nil, err
	}
	return s.GetAct(ctx, actName)
}

func (s *SheetsStore) SetActualEnd(ctx context.Context, actName string, t models.Clock) (*models.Act, error) {
	if err := s.writeCell(ctx, actName, sheetColActualEnd, t.String()); err != nil {
		return nil, err
	}
	return s.GetAct(ctx, actName)
}

func (s *SheetsStore) ClearActualTimes(ctx context.Context, actName string) (*models.Act, error) {
	if err := s.writeCell(ctx, actName, sheetColActualStart, ""); err != nil {
		return nil, err
	}
	if err := s.writeCell(ctx, actName, sheetColActualEnd, ""); err != nil {
		return nil, err
	}
	return s.GetAct(ctx, actName)
}

func (s *SheetsStore) writeCell(ctx context.Context, actName, column, value string) error {
	_, index, err := s.fetchRows(ctx)
	if err != nil {
		return err
	}
	rowNum, ok := index[actName]
	if !ok {
		return ErrActNotFound
	}

	cellRange := s.rangeName(fmt.Sprintf("%s%d", column, rowNum))
	_, err = s.svc.Spreadsheets.Values.Update(s.cfg.SpreadsheetID, cellRange, &sheets.ValueRange{
		Values: [][]any{{value}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write cell %s: %w", cellRange, err)
	}
	return nil
}

func cellString(row []any, idx int) string {
	if idx >= len(row) {
		return ""
	}
	s, _ := row[idx].(string)
	return s
}
