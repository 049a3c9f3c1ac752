package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	GiftCardUnused   = "UNUSED"
	GiftCardRedeemed = "REDEEMED"
)

// GiftCard is a single-use code worth a fixed credit.
// The only allowed transition is UNUSED -> REDEEMED.
type GiftCard struct {
	ID         uuid.UUID
	Code       string
	Value      decimal.Decimal
	Status     string
	RedeemedBy *uuid.UUID
	RedeemedAt *time.Time
}
