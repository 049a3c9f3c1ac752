package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/repository"
	"github.com/okunev/bookmart/internal/service/ledger"
)

// Fixed additive charge applied to every order
var DeliveryFee = decimal.RequireFromString("5.99")

// Service converts a basket into a paid order.
type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

// Checkout validates the basket and the buyer profile, debits the
// delivery-inclusive total and materializes the order, all in one
// transaction. Any failure leaves balance, basket and orders untouched.
//
// The balance is checked and debited against the same total
// (basket subtotal plus delivery fee), so a successful checkout can
// never drive the balance negative.
func (s *Service) Checkout(ctx context.Context, accountID uuid.UUID) (models.Order, error) {
	var order models.Order

	err := ledger.InTxWithRetry(ctx, s.storage, func(storage repository.Storage) error {
		account, err := storage.Account().GetAccount(ctx, accountID, false)
		if err != nil {
			return err
		}

		basket, err := storage.Basket().GetBasket(ctx, accountID)
		if err != nil {
			return err
		}

		if basket.IsEmpty() {
			return apperrors.ErrEmptyBasket
		}

		total := basket.Total().Add(DeliveryFee)
		if !total.IsPositive() { // unreachable while items cost >= 0, kept as a guard
			return apperrors.ErrInvalidTotal
		}

		if !account.IsProfileComplete() {
			return apperrors.ErrIncompleteProfile
		}

		if _, err := ledger.Debit(ctx, storage, accountID, total); err != nil {
			return err
		}

		order, err = storage.Order().CreateOrder(ctx, newOrder(accountID, basket, total))
		if err != nil {
			return err
		}

		return storage.Basket().Clear(ctx, basket.ID)
	})
	if err != nil {
		return models.Order{}, err
	}

	return order, nil
}

// newOrder copies the basket lines by value so later catalog or basket
// changes never alter the recorded purchase
func newOrder(accountID uuid.UUID, basket models.Basket, total decimal.Decimal) models.Order {
	items := make([]models.OrderItem, 0, len(basket.Items))
	for _, line := range basket.Items {
		items = append(items, models.OrderItem{
			BookID:    line.BookID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	return models.Order{
		ID:        uuid.New(),
		AccountID: accountID,
		CreatedAt: time.Now(),
		Total:     total,
		Items:     items,
	}
}
