package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceTick is one discrete update of the synthetic price process.
// Timestamps are strictly increasing within a price history; prices are
// always strictly positive.
type PriceTick struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}
