package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BasketItem is one line of a basket.
// UnitPrice is the book price at the moment the item was added.
type BasketItem struct {
	ID        uuid.UUID
	BasketID  uuid.UUID
	BookID    uuid.UUID
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Basket is the pending selection of one account.
// An empty basket is a valid value with no items, never nil.
type Basket struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Items     []BasketItem
}

func (b Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// Total returns the sum of unit price times quantity over all items.
// Zero for an empty basket.
func (b Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
