package giftcard

import (
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/repository"
	"github.com/okunev/bookmart/internal/repository/postgres"
	"github.com/okunev/bookmart/internal/testutil"
)

func TestGiftCard(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newAccount := func(t *testing.T, storage repository.Storage, username string) models.Account {
		t.Helper()

		user, err := storage.User().CreateUser(t.Context(), username, "hashedpassword")
		require.NoError(t, err)
		account, err := storage.Account().CreateAccount(t.Context(), user.ID)
		require.NoError(t, err)

		return account
	}

	inTx := func(t *testing.T, fn func(storage repository.Storage, service *Service)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			fn(storage, NewService(storage))
		})
	}

	t.Run("Create", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			inTx(t, func(storage repository.Storage, service *Service) {
				card, err := service.Create(t.Context(), "SPRING10", decimal.RequireFromString("10.00"))

				require.NoError(t, err)
				require.Equal(t, models.GiftCardUnused, card.Status)
			})
		})

		t.Run("non positive value", func(t *testing.T) {
			inTx(t, func(storage repository.Storage, service *Service) {
				_, err := service.Create(t.Context(), "ZERO00", decimal.Zero)

				require.ErrorIs(t, err, apperrors.ErrInvalidAmount)
			})
		})
	})

	t.Run("Redeem", func(t *testing.T) {
		t.Run("redeem credits the account", func(t *testing.T) {
			inTx(t, func(storage repository.Storage, service *Service) {
				account := newAccount(t, storage, "redeemer")
				_, err := service.Create(t.Context(), "ABC123", decimal.RequireFromString("25.00"))
				require.NoError(t, err)

				updated, err := service.Redeem(t.Context(), "ABC123", account.ID)

				require.NoError(t, err)
				require.True(t, updated.Balance.Equal(decimal.RequireFromString("25.00")), "card value should be credited")

				card, err := storage.GiftCard().GetByCode(t.Context(), "ABC123", false)
				require.NoError(t, err)
				require.Equal(t, models.GiftCardRedeemed, card.Status)
				require.Equal(t, account.ID, *card.RedeemedBy)
			})
		})

		t.Run("redeem twice", func(t *testing.T) {
			inTx(t, func(storage repository.Storage, service *Service) {
				account := newAccount(t, storage, "eager-redeemer")
				_, err := service.Create(t.Context(), "ONCE01", decimal.RequireFromString("25.00"))
				require.NoError(t, err)

				_, err = service.Redeem(t.Context(), "ONCE01", account.ID)
				require.NoError(t, err, "first redemption should succeed")

				_, err = service.Redeem(t.Context(), "ONCE01", account.ID)

				require.ErrorIs(t, err, apperrors.ErrGiftCardRedeemed, "second redemption should fail")

				stored, err := storage.Account().GetAccount(t.Context(), account.ID, false)
				require.NoError(t, err)
				require.True(t, stored.Balance.Equal(decimal.RequireFromString("25.00")), "value should be credited exactly once")
			})
		})

		t.Run("redeem unknown code", func(t *testing.T) {
			inTx(t, func(storage repository.Storage, service *Service) {
				account := newAccount(t, storage, "guesser")

				_, err := service.Redeem(t.Context(), "NOPE", account.ID)

				require.ErrorIs(t, err, apperrors.ErrGiftCardNotFound)
			})
		})
	})

	// Runs over the pool with committed data: the card row lock only
	// serializes separate connections
	t.Run("concurrent redeem credits once", func(t *testing.T) {
		storage := postgres.NewStorage(pg.Pool)
		service := NewService(storage)

		account := newAccount(t, storage, "race-redeemer")
		_, err := service.Create(t.Context(), "RACE01", decimal.RequireFromString("25.00"))
		require.NoError(t, err)

		const workers = 2
		var wg sync.WaitGroup
		errs := make([]error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = service.Redeem(t.Context(), "RACE01", account.ID)
			}(i)
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				require.ErrorIs(t, err, apperrors.ErrGiftCardRedeemed)
			}
		}
		require.Equal(t, 1, succeeded, "exactly one redemption should win")

		stored, err := storage.Account().GetAccount(t.Context(), account.ID, false)
		require.NoError(t, err)
		require.True(t, stored.Balance.Equal(decimal.RequireFromString("25.00")), "value should be credited exactly once, got %s", stored.Balance)
	})
}
