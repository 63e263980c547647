// internal/storage/models/harvest.go
package models

// HarvestRecord is one confirmed reward harvest from the staking program.
type HarvestRecord struct {
	BaseModel
	Signature     string `gorm:"unique;not null;type:varchar(88)"`
	WalletAddress string `gorm:"index;not null;type:varchar(44)"`
	Amount        uint64 `gorm:"not null"`
	StakedAmount  uint64 `gorm:"not null"`
	Status        string `gorm:"not null;type:varchar(20)"`
	ErrorMessage  string `gorm:"type:text"`
}
