package handlers

import (
	"errors"
	"net/http"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/handlers/render"
	"github.com/okunev/bookmart/internal/logger"
)

func handleRedeemGiftCard(accountService accountService, giftcardService giftcardService, l logger.Logger) http.Handler {
	type request struct {
		Code string `json:"code" validate:"required"`
	}
	type response struct {
		Message string  `json:"message"`
		Balance float64 `json:"balance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := resolveAccount(w, r, accountService)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := giftcardService.Redeem(r.Context(), data.Code, acc.ID)

		switch {
		case err == nil:
			balance, _ := updated.Balance.Float64()
			render.JSON(w, response{Message: "Gift card redeemed successfully", Balance: balance})
		case errors.Is(err, apperrors.ErrGiftCardNotFound):
			render.ServiceError(w, "Gift card not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrGiftCardRedeemed):
			render.ServiceError(w, "Gift card already redeemed", http.StatusConflict)
		case errors.Is(err, apperrors.ErrConcurrentUpdate):
			render.ServiceError(w, "Another redemption is in progress. Please try again.", http.StatusConflict)
		default:
			l.Error("Failed to redeem gift card", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
