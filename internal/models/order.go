package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a value snapshot of a purchased book.
// Title and UnitPrice are copied at checkout so later catalog edits
// never change purchase history.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	BookID    uuid.UUID
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Order is the persisted result of a successful checkout.
// Total is immutable and equals the amount actually debited.
type Order struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	CreatedAt time.Time
	Total     decimal.Decimal
	Items     []OrderItem
}
