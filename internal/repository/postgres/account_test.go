package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/repository"
	"github.com/okunev/bookmart/internal/testutil"
)

func TestAccount(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	t.Run("CreateAccount", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "testuser", "hashedpassword")
			require.NoError(t, err)

			t.Run("create ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					account, err := storage.Account().CreateAccount(t.Context(), user.ID)

					require.NoError(t, err, "account has to be created ok")
					require.Equal(t, user.ID, account.UserID)
					require.True(t, account.Balance.IsZero(), "new account should start with zero balance")
					require.False(t, account.IsProfileComplete(), "new account profile should be incomplete")
				})
			})

			t.Run("create duplicate", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Account().CreateAccount(t.Context(), user.ID)
					require.NoError(t, err, "first account creation should be ok")

					_, err = storage.Account().CreateAccount(t.Context(), user.ID)

					require.Error(t, err, "creating account twice should fail")
					require.Contains(t, err.Error(), "user account already exists")
				})
			})
		})
	})

	t.Run("GetAccount", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "testuser", "hashedpassword")
			require.NoError(t, err)
			account, err := storage.Account().CreateAccount(t.Context(), user.ID)
			require.NoError(t, err)

			t.Run("get by id", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					got, err := storage.Account().GetAccount(t.Context(), account.ID, false)

					require.NoError(t, err)
					require.Equal(t, account.ID, got.ID)
					require.Equal(t, user.ID, got.UserID)
				})
			})

			t.Run("get by id for update", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					got, err := storage.Account().GetAccount(t.Context(), account.ID, true)

					require.NoError(t, err, "locking read should work inside a transaction")
					require.Equal(t, account.ID, got.ID)
				})
			})

			t.Run("get by user id", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					got, err := storage.Account().GetAccountByUserID(t.Context(), user.ID)

					require.NoError(t, err)
					require.Equal(t, account.ID, got.ID)
				})
			})

			t.Run("get nonexistent", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Account().GetAccount(t.Context(), uuid.New(), false)

					require.Error(t, err, "getting nonexistent account should fail")
					require.ErrorIs(t, err, apperrors.ErrAccountNotFound, "should return well known error")
				})
			})
		})
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "testuser", "hashedpassword")
			require.NoError(t, err)
			account, err := storage.Account().CreateAccount(t.Context(), user.ID)
			require.NoError(t, err)

			t.Run("update profile fields", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					birthDate := testutil.MustParseTime(t, "1987-05-12 00:00:00Z")

					account.FirstName = "Leo"
					account.LastName = "Tolstoy"
					account.Phone = "+7 900 000-00-00"
					account.Address = "Yasnaya Polyana"
					account.PostalCode = "301214"
					account.BirthDate = &birthDate

					updated, err := storage.Account().UpdateProfile(t.Context(), account)

					require.NoError(t, err)
					require.Equal(t, "Leo", updated.FirstName)
					require.Equal(t, "Tolstoy", updated.LastName)
					require.Equal(t, "+7 900 000-00-00", updated.Phone)
					require.Equal(t, "Yasnaya Polyana", updated.Address)
					require.Equal(t, "301214", updated.PostalCode)
					require.NotNil(t, updated.BirthDate)
					require.True(t, updated.IsProfileComplete(), "profile should be complete after update")
					require.True(t, updated.Balance.IsZero(), "profile update must not touch the balance")
				})
			})

			t.Run("update nonexistent account", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					missing := account
					missing.ID = uuid.New()

					_, err := storage.Account().UpdateProfile(t.Context(), missing)

					require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
				})
			})
		})
	})

	t.Run("SetBalance", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "testuser", "hashedpassword")
			require.NoError(t, err)
			account, err := storage.Account().CreateAccount(t.Context(), user.ID)
			require.NoError(t, err)

			t.Run("set ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					updated, err := storage.Account().SetBalance(t.Context(), account.ID, decimal.RequireFromString("25.00"))

					require.NoError(t, err)
					require.True(t, updated.Balance.Equal(decimal.RequireFromString("25.00")), "balance should match the set value")

					stored, err := storage.Account().GetAccount(t.Context(), account.ID, false)
					require.NoError(t, err)
					require.True(t, stored.Balance.Equal(decimal.RequireFromString("25.00")), "stored balance should match")
				})
			})

			t.Run("negative balance rejected", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Account().SetBalance(t.Context(), account.ID, decimal.RequireFromString("-0.01"))

					require.Error(t, err, "setting negative balance should fail")
					require.ErrorIs(t, err, apperrors.ErrInsufficientBalance, "should return well known error")
				})
			})

			t.Run("set nonexistent account", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Account().SetBalance(t.Context(), uuid.New(), decimal.NewFromInt(10))

					require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
				})
			})
		})
	})
}
