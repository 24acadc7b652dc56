package model

import (
	"time"

	"github.com/google/uuid"
)

// Side is the direction of a manual paper order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Order is one manually recorded paper order against a selected item.
// Immutable after creation; removed only by explicit deletion.
// ItemID references either selection list's identifier space and is not
// type-checked against it.
type Order struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Price     float64   `json:"price"`
	Note      *string   `json:"note,omitempty"`
	Side      Side      `json:"side"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOrder creates an order with a fresh identifier and timestamp.
func NewOrder(itemID string, price float64, note *string, side Side) Order {
	return Order{
		ID:        uuid.NewString(),
		ItemID:    itemID,
		Price:     price,
		Note:      note,
		Side:      side,
		CreatedAt: time.Now().UTC(),
	}
}
