package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/repository"
	"github.com/okunev/bookmart/internal/testutil"
)

func TestRefreshToken(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	newToken := func(userID uuid.UUID, value string) models.RefreshToken {
		now := time.Now().Truncate(time.Microsecond)
		return models.RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			Token:     value,
			CreatedAt: now,
			ExpiresAt: now.Add(24 * time.Hour),
		}
	}

	inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
		user, err := storage.User().CreateUser(t.Context(), "testuser", "hashedpassword")
		require.NoError(t, err)

		t.Run("save and mark used", func(t *testing.T) {
			inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
				token := newToken(user.ID, "refresh-token-value")

				err := storage.Refresh().Save(t.Context(), token)
				require.NoError(t, err)

				got, err := storage.Refresh().GetAndMarkUsed(t.Context(), "refresh-token-value")

				require.NoError(t, err)
				require.Equal(t, token.ID, got.ID)
				require.Equal(t, user.ID, got.UserID)
				require.NotNil(t, got.UsedAt, "token should be marked used")
			})
		})

		t.Run("mark used twice", func(t *testing.T) {
			inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
				token := newToken(user.ID, "spent-token")

				err := storage.Refresh().Save(t.Context(), token)
				require.NoError(t, err)

				first, err := storage.Refresh().GetAndMarkUsed(t.Context(), "spent-token")
				require.NoError(t, err, "first use should be ok")

				second, err := storage.Refresh().GetAndMarkUsed(t.Context(), "spent-token")

				require.ErrorIs(t, err, apperrors.ErrRefreshTokenIsUsed, "second use should fail")
				require.NotNil(t, second.UsedAt)
				require.True(t, second.UsedAt.Equal(*first.UsedAt), "original used at should be kept")
			})
		})

		t.Run("mark unknown token", func(t *testing.T) {
			inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
				_, err := storage.Refresh().GetAndMarkUsed(t.Context(), "never-saved")

				require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
			})
		})
	})
}
