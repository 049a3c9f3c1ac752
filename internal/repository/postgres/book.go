package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/models"
)

type BookRepo struct {
	DB DBTX
}

const createBook = `-- name: CreateBook
INSERT INTO books (id, title, author, price)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, title, author, price
`

func (r *BookRepo) CreateBook(ctx context.Context, title string, author string, price decimal.Decimal) (models.Book, error) {
	rows, _ := r.DB.Query(ctx, createBook, uuid.New(), title, author, price)
	book, err := pgx.CollectOneRow(rows, rowToBook)
	if err != nil {
		return book, fmt.Errorf("db error: %w", err)
	}

	return book, nil
}

const getBook = `-- name: GetBook
SELECT id, created_at, title, author, price FROM books
WHERE id = $1
`

func (r *BookRepo) GetBook(ctx context.Context, bookID uuid.UUID) (models.Book, error) {
	rows, _ := r.DB.Query(ctx, getBook, bookID)
	book, err := pgx.CollectOneRow(rows, rowToBook)

	switch {
	case err == nil:
		return book, nil
	case errors.Is(err, pgx.ErrNoRows):
		return book, apperrors.ErrBookNotFound
	default:
		return book, fmt.Errorf("db error: %w", err)
	}
}

const listBooks = `-- name: ListBooks
SELECT id, created_at, title, author, price FROM books
WHERE $1 = '' OR title ILIKE '%' || $1 || '%'
ORDER BY title, author
`

func (r *BookRepo) ListBooks(ctx context.Context, titleFilter string) ([]models.Book, error) {
	rows, _ := r.DB.Query(ctx, listBooks, titleFilter)
	books, err := pgx.CollectRows(rows, rowToBook)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return books, nil
}

func rowToBook(row pgx.CollectableRow) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.CreatedAt, &b.Title, &b.Author, &b.Price)
	return b, err
}
