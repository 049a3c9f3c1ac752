package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/repository"
)

const (
	maxAttempts  = 3
	retryBackoff = 25 * time.Millisecond
)

// Service owns the account balance.
// Nothing else in the codebase is allowed to change it.
type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

// Debit subtracts amount from the account balance and persists it.
// Fails with apperrors.ErrInvalidAmount for non-positive amounts and
// apperrors.ErrInsufficientBalance when the balance does not cover amount.
func (s *Service) Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (models.Account, error) {
	var account models.Account

	err := InTxWithRetry(ctx, s.storage, func(storage repository.Storage) error {
		var err error
		account, err = Debit(ctx, storage, accountID, amount)
		return err
	})

	return account, err
}

// Credit adds amount to the account balance and persists it.
// Fails with apperrors.ErrInvalidAmount for non-positive amounts.
func (s *Service) Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (models.Account, error) {
	var account models.Account

	err := InTxWithRetry(ctx, s.storage, func(storage repository.Storage) error {
		var err error
		account, err = Credit(ctx, storage, accountID, amount)
		return err
	})

	return account, err
}

// Debit applies the debit through the caller's transaction-bound storage.
// The account row is locked first, so the read-compare-write sequence is
// atomic against concurrent debits and credits of the same account.
func Debit(ctx context.Context, storage repository.Storage, accountID uuid.UUID, amount decimal.Decimal) (models.Account, error) {
	if !amount.IsPositive() {
		return models.Account{}, apperrors.ErrInvalidAmount
	}

	account, err := storage.Account().GetAccount(ctx, accountID, true)
	if err != nil {
		return account, err
	}

	if account.Balance.LessThan(amount) {
		return account, apperrors.ErrInsufficientBalance
	}

	return storage.Account().SetBalance(ctx, accountID, account.Balance.Sub(amount))
}

// Credit applies the credit through the caller's transaction-bound storage.
func Credit(ctx context.Context, storage repository.Storage, accountID uuid.UUID, amount decimal.Decimal) (models.Account, error) {
	if !amount.IsPositive() {
		return models.Account{}, apperrors.ErrInvalidAmount
	}

	account, err := storage.Account().GetAccount(ctx, accountID, true)
	if err != nil {
		return account, err
	}

	return storage.Account().SetBalance(ctx, accountID, account.Balance.Add(amount))
}

// InTxWithRetry runs fn in a transaction, retrying the whole transaction
// a bounded number of times when the database reports a serialization or
// deadlock conflict. Exhausted retries surface as apperrors.ErrConcurrentUpdate.
func InTxWithRetry(ctx context.Context, storage repository.Storage, fn func(repository.Storage) error) error {
	var err error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = storage.InTx(ctx, fn)
		if !isConflict(err) {
			return err
		}
	}

	return fmt.Errorf("%w: %w", apperrors.ErrConcurrentUpdate, err)
}

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return false
}
