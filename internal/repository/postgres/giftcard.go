package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/models"
)

type GiftCardRepo struct {
	DB DBTX
}

const giftCardColumns = `id, code, value, status, redeemed_by, redeemed_at`

const createGiftCard = `-- name: CreateGiftCard
INSERT INTO gift_cards (id, code, value)
VALUES ($1, $2, $3)
RETURNING ` + giftCardColumns

func (r *GiftCardRepo) CreateGiftCard(ctx context.Context, code string, value decimal.Decimal) (models.GiftCard, error) {
	rows, _ := r.DB.Query(ctx, createGiftCard, uuid.New(), code, value)
	card, err := pgx.CollectOneRow(rows, rowToGiftCard)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return card, fmt.Errorf("gift card code already exists: %w", err)
		}

		return card, fmt.Errorf("db error: %w", err)
	}

	return card, nil
}

const getGiftCardByCode = `-- name: GetGiftCardByCode
SELECT ` + giftCardColumns + ` FROM gift_cards
WHERE code = $1
`

// GetByCode loads the card, locking the row when forUpdate is set.
// The lock makes the read-state -> mark-redeemed sequence atomic per code.
func (r *GiftCardRepo) GetByCode(ctx context.Context, code string, forUpdate bool) (models.GiftCard, error) {
	query := getGiftCardByCode
	if forUpdate {
		query += "FOR UPDATE\n"
	}

	rows, _ := r.DB.Query(ctx, query, code)
	card, err := pgx.CollectOneRow(rows, rowToGiftCard)

	switch {
	case err == nil:
		return card, nil
	case errors.Is(err, pgx.ErrNoRows):
		return card, apperrors.ErrGiftCardNotFound
	default:
		return card, fmt.Errorf("db error: %w", err)
	}
}

// Transition only from UNUSED so a second redemption never succeeds,
// whichever path it races through
const markGiftCardRedeemed = `-- name: MarkGiftCardRedeemed
UPDATE gift_cards
SET status = 'REDEEMED', redeemed_by = $2, redeemed_at = $3
WHERE code = $1 AND status = 'UNUSED'
RETURNING ` + giftCardColumns

func (r *GiftCardRepo) MarkRedeemed(ctx context.Context, code string, accountID uuid.UUID, at time.Time) (models.GiftCard, error) {
	rows, _ := r.DB.Query(ctx, markGiftCardRedeemed, code, accountID, at)
	card, err := pgx.CollectOneRow(rows, rowToGiftCard)

	switch {
	case err == nil:
		return card, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Either the code is unknown or the card is spent already, look it up to tell
		card, lookupErr := r.GetByCode(ctx, code, false)
		if lookupErr != nil {
			return card, lookupErr
		}
		return card, apperrors.ErrGiftCardRedeemed
	default:
		return card, fmt.Errorf("db error: %w", err)
	}
}

func rowToGiftCard(row pgx.CollectableRow) (models.GiftCard, error) {
	var c models.GiftCard
	err := row.Scan(&c.ID, &c.Code, &c.Value, &c.Status, &c.RedeemedBy, &c.RedeemedAt)
	return c, err
}
