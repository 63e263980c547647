// internal/storage/models/swap.go
package models

import "time"

// SwapRecord is one executed (or attempted) swap. Amounts are stored in minor
// units exactly as they went over the wire. Attempts that failed before
// broadcast have no signature; the unique index covers broadcast ones only.
type SwapRecord struct {
	BaseModel
	Signature     string     `gorm:"index:idx_swap_records_signature,unique,where:signature <> '';not null;type:varchar(88)"`
	WalletAddress string     `gorm:"index;not null;type:varchar(44)"`
	Direction     string     `gorm:"not null;type:varchar(20)"`
	AmountIn      uint64     `gorm:"not null"`
	ExpectedOut   uint64     `gorm:"not null"`
	MinOut        uint64     `gorm:"not null"`
	Contribution  uint64     `gorm:"not null"`
	Rebate        uint64     `gorm:"not null"`
	Status        string     `gorm:"not null;type:varchar(20)"`
	ErrorMessage  string     `gorm:"type:text"`
	ExecutionMs   int64      `gorm:"not null;default:0"`
	BlockTime     *time.Time `gorm:"index"`
}
