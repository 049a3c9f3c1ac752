package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrAccountNotFound   = errors.New("account not found")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrBookNotFound = errors.New("book not found")
	ErrItemNotFound = errors.New("basket item not found")

	ErrEmptyBasket       = errors.New("basket is empty")
	ErrInvalidTotal      = errors.New("basket total is invalid")
	ErrIncompleteProfile = errors.New("profile is incomplete")

	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrConcurrentUpdate    = errors.New("concurrent balance update conflict")

	ErrGiftCardNotFound = errors.New("gift card not found")
	ErrGiftCardRedeemed = errors.New("gift card already redeemed")
)
