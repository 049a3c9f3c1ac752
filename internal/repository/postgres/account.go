package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/models"
)

type AccountRepo struct {
	DB DBTX
}

const accountColumns = `id, user_id, first_name, last_name, phone, address, postal_code, birth_date, balance`

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (id, user_id)
VALUES ($1, $2)
RETURNING ` + accountColumns

func (r *AccountRepo) CreateAccount(ctx context.Context, userID uuid.UUID) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, createAccount, uuid.New(), userID)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, fmt.Errorf("user account already exists: %w", err)
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const getAccount = `-- name: GetAccount
SELECT ` + accountColumns + ` FROM accounts
WHERE id = $1
`

// GetAccount loads the account, locking the row when forUpdate is set.
// The lock is what serializes concurrent debits and credits on one account.
func (r *AccountRepo) GetAccount(ctx context.Context, accountID uuid.UUID, forUpdate bool) (models.Account, error) {
	query := getAccount
	if forUpdate {
		query += "FOR UPDATE\n"
	}

	rows, _ := r.DB.Query(ctx, query, accountID)
	return collectAccount(rows)
}

const getAccountByUserID = `-- name: GetAccountByUserID
SELECT ` + accountColumns + ` FROM accounts
WHERE user_id = $1
`

func (r *AccountRepo) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByUserID, userID)
	return collectAccount(rows)
}

const updateProfile = `-- name: UpdateProfile
UPDATE accounts
SET first_name = $2, last_name = $3, phone = $4, address = $5, postal_code = $6, birth_date = $7
WHERE id = $1
RETURNING ` + accountColumns

func (r *AccountRepo) UpdateProfile(ctx context.Context, account models.Account) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, updateProfile,
		account.ID,
		account.FirstName,
		account.LastName,
		account.Phone,
		account.Address,
		account.PostalCode,
		account.BirthDate,
	)
	return collectAccount(rows)
}

const setBalance = `-- name: SetBalance
UPDATE accounts
SET balance = $2
WHERE id = $1
RETURNING ` + accountColumns

func (r *AccountRepo) SetBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, setBalance, accountID, balance)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			// balance >= 0 check in the schema backstops the ledger guard
			return account, apperrors.ErrInsufficientBalance
		}
		return account, fmt.Errorf("db error: %w", err)
	}
}

func collectAccount(rows pgx.Rows) (models.Account, error) {
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Phone, &a.Address, &a.PostalCode, &a.BirthDate, &a.Balance)
	return a, err
}
