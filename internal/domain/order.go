package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

// OrderStatus is the lifecycle state of an order. The only legal
// transition is Pending -> Filled; Filled is terminal.
type OrderStatus string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"

	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusFilled  OrderStatus = "FILLED"
)

// ContractMultiplier scales per-unit price movement into account currency.
const ContractMultiplier = 100

// Order represents a single simulated position. EntryPrice is captured at
// submission time; FilledAt and PnL are set exactly once, at settlement.
type Order struct {
	ID         string           `json:"id"`
	Side       Side             `json:"side"`
	Size       decimal.Decimal  `json:"size"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	Status     OrderStatus      `json:"status"`
	PlacedAt   time.Time        `json:"placed_at"`
	FilledAt   *time.Time       `json:"filled_at,omitempty"`
	PnL        *decimal.Decimal `json:"pnl,omitempty"`
}

// IsPending checks if the order is still awaiting settlement.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// PnL computes the realised profit/loss for a fill at fillPrice,
// rounded to 2 decimal places. A Buy profits when the price rises,
// a Sell when it falls.
func PnL(side Side, entry, fill, size decimal.Decimal) decimal.Decimal {
	move := fill.Sub(entry)
	if side == SideSell {
		move = entry.Sub(fill)
	}
	return move.Mul(size).Mul(decimal.NewFromInt(ContractMultiplier)).Round(2)
}

// ParseSide validates a raw side string from the presentation layer.
func ParseSide(raw string) (Side, bool) {
	switch Side(raw) {
	case SideBuy:
		return SideBuy, true
	case SideSell:
		return SideSell, true
	default:
		return "", false
	}
}
