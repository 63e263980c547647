// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/multihub-labs/multihub-client/internal/storage/models"
)

// SwapStore persists swap history. The orchestrator writes; reporting reads.
type SwapStore interface {
	SaveSwap(ctx context.Context, record *models.SwapRecord) error
	GetSwap(ctx context.Context, signature string) (*models.SwapRecord, error)
	ListSwaps(ctx context.Context, walletAddress string, limit, offset int) ([]*models.SwapRecord, error)
	UpdateSwapStatus(ctx context.Context, signature string, status string, errorMsg string) error
}

// StakeStore persists staking activity.
type StakeStore interface {
	SaveHarvest(ctx context.Context, record *models.HarvestRecord) error
	ListHarvests(ctx context.Context, walletAddress string, limit, offset int) ([]*models.HarvestRecord, error)
}

// Storage is the full persistence surface.
type Storage interface {
	SwapStore
	StakeStore

	RunMigrations() error
}
