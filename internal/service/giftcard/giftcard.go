package giftcard

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

type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

// Create issues a new unused gift card, admin side
func (s *Service) Create(ctx context.Context, code string, value decimal.Decimal) (models.GiftCard, error) {
	if !value.IsPositive() {
		return models.GiftCard{}, apperrors.ErrInvalidAmount
	}

	return s.storage.GiftCard().CreateGiftCard(ctx, code, value)
}

// Redeem consumes the card and credits its value to the account.
// The card row is locked for the whole transaction, so two concurrent
// redemptions of one code cannot both pass the state check: the card
// is credited exactly once, the loser gets apperrors.ErrGiftCardRedeemed.
func (s *Service) Redeem(ctx context.Context, code string, accountID uuid.UUID) (models.Account, error) {
	var account models.Account

	err := ledger.InTxWithRetry(ctx, s.storage, func(storage repository.Storage) error {
		card, err := storage.GiftCard().GetByCode(ctx, code, true)
		if err != nil {
			return err
		}

		if card.Status == models.GiftCardRedeemed {
			return apperrors.ErrGiftCardRedeemed
		}

		if _, err := storage.GiftCard().MarkRedeemed(ctx, code, accountID, time.Now()); err != nil {
			return err
		}

		account, err = ledger.Credit(ctx, storage, accountID, card.Value)
		return err
	})

	return account, err
}
