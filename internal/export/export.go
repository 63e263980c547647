// internal/export/export.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/storage/models"
)

// Format is the export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Options configures what gets exported and where.
type Options struct {
	Format          Format
	StartTime       time.Time
	EndTime         time.Time
	DirectionFilter string // sol_to_token / token_to_sol, empty for both
	OnlyConfirmed   bool
	OutputDir       string
}

// HistoryExporter writes swap history to disk.
type HistoryExporter struct {
	logger *zap.Logger
}

func NewHistoryExporter(logger *zap.Logger) *HistoryExporter {
	return &HistoryExporter{logger: logger.Named("export")}
}

// Export filters, sorts and writes the records, returning the output path.
func (e *HistoryExporter) Export(records []*models.SwapRecord, options Options) (string, error) {
	filtered := e.filter(records, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no swaps match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	outputPath := filepath.Join(options.OutputDir, e.filename(options))
	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = e.writeCSV(filtered, outputPath)
	case FormatJSON:
		err = e.writeJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("history exported",
		zap.Int("records", len(filtered)),
		zap.String("path", outputPath))
	return outputPath, nil
}

func (e *HistoryExporter) filter(records []*models.SwapRecord, options Options) []*models.SwapRecord {
	filtered := make([]*models.SwapRecord, 0, len(records))
	for _, record := range records {
		if !options.StartTime.IsZero() && record.CreatedAt.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && record.CreatedAt.After(options.EndTime) {
			continue
		}
		if options.DirectionFilter != "" && record.Direction != options.DirectionFilter {
			continue
		}
		if options.OnlyConfirmed && record.Status != "confirmed" {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

func (e *HistoryExporter) filename(options Options) string {
	return fmt.Sprintf("swaps_%s.%s",
		time.Now().UTC().Format("20060102_150405"),
		options.Format)
}

func (e *HistoryExporter) writeCSV(records []*models.SwapRecord, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"timestamp", "signature", "wallet", "direction",
		"amount_in", "expected_out", "min_out", "contribution", "rebate",
		"status", "error", "execution_ms",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.CreatedAt.UTC().Format(time.RFC3339),
			record.Signature,
			record.WalletAddress,
			record.Direction,
			strconv.FormatUint(record.AmountIn, 10),
			strconv.FormatUint(record.ExpectedOut, 10),
			strconv.FormatUint(record.MinOut, 10),
			strconv.FormatUint(record.Contribution, 10),
			strconv.FormatUint(record.Rebate, 10),
			record.Status,
			record.ErrorMessage,
			strconv.FormatInt(record.ExecutionMs, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}

func (e *HistoryExporter) writeJSON(records []*models.SwapRecord, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}
