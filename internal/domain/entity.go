package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FillRecord is the journaled form of a settled order. The journal is an
// audit artifact only: simulation state is never reloaded from it.
type FillRecord struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    string          `gorm:"index" json:"order_id"`
	Side       string          `json:"side"`
	Size       decimal.Decimal `gorm:"type:decimal(20,8)" json:"size"`
	EntryPrice decimal.Decimal `gorm:"type:decimal(20,8)" json:"entry_price"`
	FillPrice  decimal.Decimal `gorm:"type:decimal(20,8)" json:"fill_price"`
	PnL        decimal.Decimal `gorm:"column:pnl;type:decimal(20,2)" json:"pnl"`
	PlacedAt   time.Time       `json:"placed_at"`
	FilledAt   time.Time       `json:"filled_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AppConfig represents user-specific configuration (Key-Value).
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
