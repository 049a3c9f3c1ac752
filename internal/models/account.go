package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds the buyer profile and the stored balance.
// Balance is mutated only through the ledger service and never goes below zero.
type Account struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	FirstName  string
	LastName   string
	Phone      string
	Address    string
	PostalCode string
	BirthDate  *time.Time // nil until the user fills it in
	Balance    decimal.Decimal
}

// IsProfileComplete reports whether the fields required before payment are set.
// Postal code and birth date are collected for display only and not required here.
func (a Account) IsProfileComplete() bool {
	return a.FirstName != "" && a.LastName != "" && a.Phone != "" && a.Address != ""
}
