package core

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/invtrack/invtrack/internal/logging"
)

// importColumns are the recognized CSV headers, matched case-insensitively
// and in any order. status and image are optional.
var importColumns = []string{"name", "unit", "category", "brand", "stock", "status", "image"}

// ImportFile runs an import from a staged upload and removes the file
// afterwards regardless of outcome. The upload is a transient artifact; it
// must not survive the request, not even on failure paths.
func (s *Service) ImportFile(ctx context.Context, path string) (*ImportSummary, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.FromContext(ctx).Warn("failed to remove upload artifact", "path", path, "error", err)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %v", ErrImportFailed, err)
	}
	defer f.Close()

	return s.Import(ctx, f)
}

// Import parses a CSV payload and inserts its rows one by one, in input
// order. A payload that cannot be parsed at all fails the whole operation;
// individual bad rows only affect the summary counters.
//
// Each accepted row is written in its own transaction (product plus optional
// opening history entry), so a row-level storage error skips that row and
// the batch keeps going.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	summary := &ImportSummary{Success: true, Duplicates: []string{}}
	if len(records) == 0 {
		return summary, nil
	}

	colIndex := headerIndex(records[0])
	rows := records[1:]
	summary.Total = len(rows)

	logger := logging.WithFields(ctx, "rows", len(rows))

	for _, row := range rows {
		name := fieldValue(row, colIndex, "name")
		unit := fieldValue(row, colIndex, "unit")
		category := fieldValue(row, colIndex, "category")
		brand := fieldValue(row, colIndex, "brand")

		if name == "" || unit == "" || category == "" || brand == "" {
			summary.Skipped++
			continue
		}

		// Checked per row, after earlier rows committed, so a repeated name
		// within one batch collides with its first occurrence.
		if _, err := s.findIDByName(ctx, name, 0); err == nil {
			summary.Duplicates = append(summary.Duplicates, name)
			summary.Skipped++
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("duplicate check failed, skipping row", "name", name, "error", err)
			summary.Skipped++
			continue
		}

		stock := coerceStock(fieldValue(row, colIndex, "stock"))

		status := fieldValue(row, colIndex, "status")
		if status == "" {
			if stock > 0 {
				status = StatusInStock
			} else {
				status = StatusOutOfStock
			}
		}

		var image *string
		if img := fieldValue(row, colIndex, "image"); img != "" {
			image = &img
		}

		in := ProductInput{
			Name:     name,
			Unit:     unit,
			Category: category,
			Brand:    brand,
			Stock:    stock,
			Status:   status,
			Image:    image,
		}

		if err := s.importRow(ctx, in); err != nil {
			logger.Warn("row insert failed, skipping", "name", name, "error", err)
			summary.Skipped++
			continue
		}

		summary.Added++
	}

	logger.Info("import finished",
		"added", summary.Added,
		"skipped", summary.Skipped,
		"duplicates", len(summary.Duplicates),
	)

	return summary, nil
}

// importRow inserts one accepted row and its optional opening history entry
// atomically.
func (s *Service) importRow(ctx context.Context, in ProductInput) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.insertProductTx(ctx, tx, in, ActorImport, nowUTC()); err != nil {
		return err
	}

	return tx.Commit()
}

// headerIndex maps lowercased header names to their column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// fieldValue returns the trimmed cell for a named column, or "" when the
// column is absent or the row is short.
func fieldValue(row []string, colIndex map[string]int, name string) string {
	pos, ok := colIndex[name]
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

// coerceStock parses a stock cell into a non-negative integer, defaulting to
// zero on absence, garbage or negative values.
func coerceStock(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
