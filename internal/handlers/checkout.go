package handlers

import (
	"errors"
	"net/http"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/handlers/render"
	"github.com/okunev/bookmart/internal/logger"
)

func handleCheckout(accountService accountService, checkoutService checkoutService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := resolveAccount(w, r, accountService)
		if !ok {
			return
		}

		order, err := checkoutService.Checkout(r.Context(), acc.ID)

		// Every expected failure gets its own message, the user must
		// see what exactly to fix before retrying payment
		switch {
		case err == nil:
			render.JSONWithStatus(w, toOrderResponse(order), http.StatusCreated)
		case errors.Is(err, apperrors.ErrEmptyBasket):
			render.ServiceError(w, "Your basket is empty", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrInvalidTotal):
			render.ServiceError(w, "Your basket total is invalid. Please check your basket.", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrIncompleteProfile):
			render.ServiceError(w, "Please complete your profile before paying.", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			render.ServiceError(w, "Insufficient balance. Please add money.", http.StatusPaymentRequired)
		case errors.Is(err, apperrors.ErrConcurrentUpdate):
			render.ServiceError(w, "Another payment is in progress. Please try again.", http.StatusConflict)
		default:
			l.Error("Failed to checkout", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
