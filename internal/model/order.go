package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. An order only ever moves PENDING -> COMPLETED.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

type Order struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	CreatedBy string      `json:"createdBy"`
	CreatedAt time.Time   `json:"createdAt"`
	Items     []OrderItem `json:"items,omitempty"`
	Creator   *Creator    `json:"creator,omitempty"`
}

// OrderItem is one product line on an order. Price stays null until the
// admin completes the order.
type OrderItem struct {
	ID        string              `json:"id"`
	OrderID   string              `json:"listId"`
	ProductID string              `json:"productId"`
	Quantity  float64             `json:"quantity"`
	Price     decimal.NullDecimal `json:"price"`
	Product   *ProductRef         `json:"product,omitempty"`
}
