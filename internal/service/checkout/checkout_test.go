package checkout

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

func TestCheckout(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Buyer with a complete profile, a balance and one book priced 15.00 in the basket
	newBuyer := func(t *testing.T, storage repository.Storage, username string, balance string) models.Account {
		t.Helper()

		user, err := storage.User().CreateUser(t.Context(), username, "hashedpassword")
		require.NoError(t, err)
		account, err := storage.Account().CreateAccount(t.Context(), user.ID)
		require.NoError(t, err)

		account.FirstName = "Anna"
		account.LastName = "Reader"
		account.Phone = "+1 555 0100"
		account.Address = "1 Library Lane"
		account, err = storage.Account().UpdateProfile(t.Context(), account)
		require.NoError(t, err)

		account, err = storage.Account().SetBalance(t.Context(), account.ID, decimal.RequireFromString(balance))
		require.NoError(t, err)

		return account
	}

	fillBasket := func(t *testing.T, storage repository.Storage, account models.Account, price string) models.Book {
		t.Helper()

		book, err := storage.Book().CreateBook(t.Context(), "The Master and Margarita", "Mikhail Bulgakov", decimal.RequireFromString(price))
		require.NoError(t, err)
		basket, err := storage.Basket().GetBasket(t.Context(), account.ID)
		require.NoError(t, err)
		_, err = storage.Basket().AddItem(t.Context(), basket.ID, book, 1)
		require.NoError(t, err)

		return book
	}

	inTx := func(t *testing.T, fn func(storage repository.Storage, service *Service)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			fn(storage, NewService(storage))
		})
	}

	t.Run("successful checkout", func(t *testing.T) {
		inTx(t, func(storage repository.Storage, service *Service) {
			account := newBuyer(t, storage, "happy-buyer", "25.00")
			book := fillBasket(t, storage, account, "15.00")

			order, err := service.Checkout(t.Context(), account.ID)

			require.NoError(t, err)
			require.True(t, order.Total.Equal(decimal.RequireFromString("20.99")), "order total should include delivery, got %s", order.Total)
			require.Len(t, order.Items, 1)
			require.Equal(t, book.ID, order.Items[0].BookID)
			require.Equal(t, book.Title, order.Items[0].Title)
			require.True(t, order.Items[0].UnitPrice.Equal(book.Price))

			stored, err := storage.Account().GetAccount(t.Context(), account.ID, false)
			require.NoError(t, err)
			require.True(t, stored.Balance.Equal(decimal.RequireFromString("4.01")), "balance should shrink by the full total, got %s", stored.Balance)

			basket, err := storage.Basket().GetBasket(t.Context(), account.ID)
			require.NoError(t, err)
			require.True(t, basket.IsEmpty(), "basket should be emptied after checkout")

			orders, err := storage.Order().ListOrders(t.Context(), account.ID)
			require.NoError(t, err)
			require.Len(t, orders, 1)
			require.Equal(t, order.ID, orders[0].ID)
		})
	})

	t.Run("balance covers books but not delivery", func(t *testing.T) {
		inTx(t, func(storage repository.Storage, service *Service) {
			account := newBuyer(t, storage, "short-buyer", "20.00")
			fillBasket(t, storage, account, "15.00")

			_, err := service.Checkout(t.Context(), account.ID)

			require.ErrorIs(t, err, apperrors.ErrInsufficientBalance, "20.00 does not cover 15.00 plus delivery")

			stored, err := storage.Account().GetAccount(t.Context(), account.ID, false)
			require.NoError(t, err)
			require.True(t, stored.Balance.Equal(decimal.RequireFromString("20.00")), "failed checkout must not touch the balance")

			basket, err := storage.Basket().GetBasket(t.Context(), account.ID)
			require.NoError(t, err)
			require.False(t, basket.IsEmpty(), "failed checkout must keep the basket")

			orders, err := storage.Order().ListOrders(t.Context(), account.ID)
			require.NoError(t, err)
			require.Empty(t, orders, "failed checkout must not create an order")
		})
	})

	t.Run("empty basket", func(t *testing.T) {
		inTx(t, func(storage repository.Storage, service *Service) {
			account := newBuyer(t, storage, "empty-buyer", "100.00")

			_, err := service.Checkout(t.Context(), account.ID)

			require.ErrorIs(t, err, apperrors.ErrEmptyBasket)
		})
	})

	t.Run("incomplete profile", func(t *testing.T) {
		inTx(t, func(storage repository.Storage, service *Service) {
			user, err := storage.User().CreateUser(t.Context(), "anon-buyer", "hashedpassword")
			require.NoError(t, err)
			account, err := storage.Account().CreateAccount(t.Context(), user.ID)
			require.NoError(t, err)
			account, err = storage.Account().SetBalance(t.Context(), account.ID, decimal.RequireFromString("100.00"))
			require.NoError(t, err)
			fillBasket(t, storage, account, "15.00")

			_, err = service.Checkout(t.Context(), account.ID)

			require.ErrorIs(t, err, apperrors.ErrIncompleteProfile)

			stored, err := storage.Account().GetAccount(t.Context(), account.ID, false)
			require.NoError(t, err)
			require.True(t, stored.Balance.Equal(decimal.RequireFromString("100.00")), "balance must stay untouched")
		})
	})

	t.Run("order records prices at checkout time", func(t *testing.T) {
		inTx(t, func(storage repository.Storage, service *Service) {
			account := newBuyer(t, storage, "snapshot-buyer", "50.00")
			book := fillBasket(t, storage, account, "15.00")

			order, err := service.Checkout(t.Context(), account.ID)
			require.NoError(t, err)

			// A later price change must not leak into the recorded order
			_, err = storage.Book().CreateBook(t.Context(), book.Title, book.Author, decimal.RequireFromString("99.00"))
			require.NoError(t, err)

			orders, err := storage.Order().ListOrders(t.Context(), account.ID)
			require.NoError(t, err)
			require.Len(t, orders, 1)
			require.True(t, orders[0].Items[0].UnitPrice.Equal(decimal.RequireFromString("15.00")))
			require.True(t, orders[0].Total.Equal(order.Total))
		})
	})

	// Runs over the pool with committed data: the account row lock only
	// serializes separate connections
	t.Run("concurrent checkout debits once", func(t *testing.T) {
		storage := postgres.NewStorage(pg.Pool)
		service := NewService(storage)

		account := newBuyer(t, storage, "race-buyer", "25.00")
		fillBasket(t, storage, account, "15.00")

		const workers = 2
		var wg sync.WaitGroup
		errs := make([]error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = service.Checkout(t.Context(), account.ID)
			}(i)
		}
		wg.Wait()

		var succeeded, failed int
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			default:
				failed++
			}
		}
		require.Equal(t, 1, succeeded, "exactly one checkout should win")
		require.Equal(t, 1, failed, "the loser should fail, not double charge")

		stored, err := storage.Account().GetAccount(t.Context(), account.ID, false)
		require.NoError(t, err)
		require.True(t, stored.Balance.Equal(decimal.RequireFromString("4.01")), "balance should be debited exactly once, got %s", stored.Balance)

		orders, err := storage.Order().ListOrders(t.Context(), account.ID)
		require.NoError(t, err)
		require.Len(t, orders, 1, "exactly one order should exist")
	})
}
