package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okunev/bookmart/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by its id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	Save(ctx context.Context, token models.RefreshToken) error

	// Mark token as used and return it
	// If the token is already used must return apperrors.ErrRefreshTokenIsUsed
	// and must not overwrite the existing usedAt
	GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error)
}

// Account repository interface
type AccountRepo interface {
	// Create empty account with zero balance for the user
	CreateAccount(ctx context.Context, userID uuid.UUID) (models.Account, error)

	// Get account by its id or the owning user id
	// If forUpdate is true the row is locked until the enclosing tx ends
	// If account not found must return apperrors.ErrAccountNotFound
	GetAccount(ctx context.Context, accountID uuid.UUID, forUpdate bool) (models.Account, error)
	GetAccountByUserID(ctx context.Context, userID uuid.UUID) (models.Account, error)

	// Update profile fields, balance stays untouched
	UpdateProfile(ctx context.Context, account models.Account) (models.Account, error)

	// Set balance to the given value and return the updated account
	// Callers must hold the row lock (GetAccount with forUpdate) first
	SetBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) (models.Account, error)
}

// Book catalog repository interface
type BookRepo interface {
	CreateBook(ctx context.Context, title string, author string, price decimal.Decimal) (models.Book, error)

	// If book not found must return apperrors.ErrBookNotFound
	GetBook(ctx context.Context, bookID uuid.UUID) (models.Book, error)

	// List books, optionally filtered by a title substring (case insensitive)
	ListBooks(ctx context.Context, titleFilter string) ([]models.Book, error)
}

// Basket repository interface
type BasketRepo interface {
	// Get the account basket with its items
	// Creates the basket row lazily, so an account always has a basket
	GetBasket(ctx context.Context, accountID uuid.UUID) (models.Basket, error)

	// Add quantity of the book to the basket, summing with an existing line
	// Unit price is snapshotted at add time
	AddItem(ctx context.Context, basketID uuid.UUID, book models.Book, quantity int) (models.BasketItem, error)

	// If item not found must return apperrors.ErrItemNotFound
	RemoveItem(ctx context.Context, basketID uuid.UUID, bookID uuid.UUID) error

	// Drop all items, the basket row itself stays
	Clear(ctx context.Context, basketID uuid.UUID) error
}

// GiftCard repository interface
type GiftCardRepo interface {
	CreateGiftCard(ctx context.Context, code string, value decimal.Decimal) (models.GiftCard, error)

	// Get card by code
	// If forUpdate is true the row is locked until the enclosing tx ends
	// If card not found must return apperrors.ErrGiftCardNotFound
	GetByCode(ctx context.Context, code string, forUpdate bool) (models.GiftCard, error)

	// Transition the card UNUSED -> REDEEMED recording who and when
	// If the card is redeemed already must return apperrors.ErrGiftCardRedeemed
	MarkRedeemed(ctx context.Context, code string, accountID uuid.UUID, at time.Time) (models.GiftCard, error)
}

// Order repository interface
type OrderRepo interface {
	// Persist the order with its item snapshots
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)

	// List account orders with items, newest first
	ListOrders(ctx context.Context, accountID uuid.UUID) ([]models.Order, error)
}

// Storage aggregates all repositories over one connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Account() AccountRepo
	Book() BookRepo
	Basket() BasketRepo
	GiftCard() GiftCardRepo
	Order() OrderRepo

	// Run fn within a database transaction
	// The Storage passed to fn is bound to that transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
