// internal/export/export_test.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/storage/models"
)

func sampleRecords() []*models.SwapRecord {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mk := func(offset time.Duration, direction, status string, amountIn uint64) *models.SwapRecord {
		record := &models.SwapRecord{
			Signature:     "sig-" + direction + "-" + status + "-" + offset.String(),
			WalletAddress: "wallet",
			Direction:     direction,
			AmountIn:      amountIn,
			ExpectedOut:   amountIn * 2,
			MinOut:        amountIn*2 - 10,
			Contribution:  amountIn / 5,
			Rebate:        amountIn / 10,
			Status:        status,
		}
		record.CreatedAt = base.Add(offset)
		return record
	}
	return []*models.SwapRecord{
		mk(2*time.Hour, "sol_to_token", "confirmed", 100),
		mk(0, "sol_to_token", "failed", 200),
		mk(time.Hour, "token_to_sol", "confirmed", 300),
	}
}

func TestExport_CSVRoundTrip(t *testing.T) {
	exporter := NewHistoryExporter(zap.NewNop())
	dir := t.TempDir()

	path, err := exporter.Export(sampleRecords(), Options{
		Format:    FormatCSV,
		OutputDir: dir,
	})
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 records

	assert.Equal(t, "timestamp", rows[0][0])
	// Sorted oldest first.
	assert.Equal(t, "200", rows[1][4])
	assert.Equal(t, "300", rows[2][4])
	assert.Equal(t, "100", rows[3][4])
}

func TestExport_JSONOutput(t *testing.T) {
	exporter := NewHistoryExporter(zap.NewNop())
	dir := t.TempDir()

	path, err := exporter.Export(sampleRecords(), Options{
		Format:    FormatJSON,
		OutputDir: dir,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []models.SwapRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 3)
}

func TestExport_Filters(t *testing.T) {
	exporter := NewHistoryExporter(zap.NewNop())
	dir := t.TempDir()

	path, err := exporter.Export(sampleRecords(), Options{
		Format:          FormatCSV,
		DirectionFilter: "sol_to_token",
		OnlyConfirmed:   true,
		OutputDir:       dir,
	})
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "100", rows[1][4])
}

func TestExport_NoMatches(t *testing.T) {
	exporter := NewHistoryExporter(zap.NewNop())

	_, err := exporter.Export(sampleRecords(), Options{
		Format:          FormatCSV,
		DirectionFilter: "nonexistent",
		OutputDir:       t.TempDir(),
	})
	require.Error(t, err)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	exporter := NewHistoryExporter(zap.NewNop())

	_, err := exporter.Export(sampleRecords(), Options{
		Format:    Format("xml"),
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
