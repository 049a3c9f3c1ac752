package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Book struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Title     string
	Author    string
	Price     decimal.Decimal
}
