package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/models"
)

type BasketRepo struct {
	DB DBTX
}

// Create the basket row lazily and return it with its items
// Every account therefore always has a basket, possibly empty
const ensureBasket = `-- name: EnsureBasket
WITH new_basket AS (
	INSERT INTO baskets (id, account_id)
	VALUES ($1, $2)
	ON CONFLICT (account_id) DO NOTHING
	RETURNING id, account_id
)
SELECT id, account_id FROM new_basket
UNION
SELECT id, account_id FROM baskets WHERE account_id = $2
`

const getBasketItems = `-- name: GetBasketItems
SELECT bi.id, bi.basket_id, bi.book_id, b.title, bi.unit_price, bi.quantity
FROM basket_items bi
JOIN books b ON b.id = bi.book_id
WHERE bi.basket_id = $1
ORDER BY b.title
`

func (r *BasketRepo) GetBasket(ctx context.Context, accountID uuid.UUID) (models.Basket, error) {
	var basket models.Basket

	rows, _ := r.DB.Query(ctx, ensureBasket, uuid.New(), accountID)
	basket, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Basket, error) {
		var b models.Basket
		err := row.Scan(&b.ID, &b.AccountID)
		return b, err
	})
	if err != nil {
		return basket, fmt.Errorf("db error: %w", err)
	}

	rows, _ = r.DB.Query(ctx, getBasketItems, basket.ID)
	basket.Items, err = pgx.CollectRows(rows, rowToBasketItem)
	if err != nil {
		return basket, fmt.Errorf("db error: %w", err)
	}

	return basket, nil
}

// Add the book to the basket or bump the quantity of an existing line
// The unit price is snapshotted from the book at add time and kept on conflict
const addBasketItem = `-- name: AddBasketItem
INSERT INTO basket_items (id, basket_id, book_id, unit_price, quantity)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (basket_id, book_id)
DO UPDATE SET quantity = basket_items.quantity + EXCLUDED.quantity
RETURNING id, basket_id, book_id, unit_price, quantity
`

func (r *BasketRepo) AddItem(ctx context.Context, basketID uuid.UUID, book models.Book, quantity int) (models.BasketItem, error) {
	rows, _ := r.DB.Query(ctx, addBasketItem, uuid.New(), basketID, book.ID, book.Price, quantity)
	item, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.BasketItem, error) {
		var i = models.BasketItem{Title: book.Title}
		err := row.Scan(&i.ID, &i.BasketID, &i.BookID, &i.UnitPrice, &i.Quantity)
		return i, err
	})
	if err != nil {
		return item, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

const removeBasketItem = `-- name: RemoveBasketItem
DELETE FROM basket_items
WHERE basket_id = $1 AND book_id = $2
RETURNING id
`

func (r *BasketRepo) RemoveItem(ctx context.Context, basketID uuid.UUID, bookID uuid.UUID) error {
	rows, _ := r.DB.Query(ctx, removeBasketItem, basketID, bookID)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.ErrItemNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

const clearBasket = `-- name: ClearBasket
DELETE FROM basket_items
WHERE basket_id = $1
`

func (r *BasketRepo) Clear(ctx context.Context, basketID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, clearBasket, basketID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func rowToBasketItem(row pgx.CollectableRow) (models.BasketItem, error) {
	var i models.BasketItem
	err := row.Scan(&i.ID, &i.BasketID, &i.BookID, &i.Title, &i.UnitPrice, &i.Quantity)
	return i, err
}
