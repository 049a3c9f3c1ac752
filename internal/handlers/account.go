package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/handlers/render"
	"github.com/okunev/bookmart/internal/handlers/userctx"
	"github.com/okunev/bookmart/internal/logger"
	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/service/account"
)

// resolveAccount maps the authenticated user in the request context to its account.
// Writes the error response itself when that fails.
func resolveAccount(w http.ResponseWriter, r *http.Request, accountService accountService) (models.Account, bool) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
		return models.Account{}, false
	}

	acc, err := accountService.GetForUser(r.Context(), user.ID)
	if err != nil {
		render.ServiceError(w, "Account not found", http.StatusNotFound)
		return models.Account{}, false
	}

	return acc, true
}

type profileResponse struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	PostalCode string  `json:"postal_code"`
	BirthDate  *string `json:"birth_date,omitempty"`
	Balance    float64 `json:"balance"`
	Complete   bool    `json:"complete"`
}

func toProfileResponse(acc models.Account) profileResponse {
	balance, _ := acc.Balance.Float64()

	var birthDate *string
	if acc.BirthDate != nil {
		s := acc.BirthDate.Format(time.DateOnly)
		birthDate = &s
	}

	return profileResponse{
		FirstName:  acc.FirstName,
		LastName:   acc.LastName,
		Phone:      acc.Phone,
		Address:    acc.Address,
		PostalCode: acc.PostalCode,
		BirthDate:  birthDate,
		Balance:    balance,
		Complete:   acc.IsProfileComplete(),
	}
}

func handleGetAccount(accountService accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := resolveAccount(w, r, accountService)
		if !ok {
			return
		}

		render.JSON(w, toProfileResponse(acc))
	})
}

func handleUpdateProfile(accountService accountService, l logger.Logger) http.Handler {
	type request struct {
		FirstName  string `json:"first_name" validate:"required"`
		LastName   string `json:"last_name" validate:"required"`
		Phone      string `json:"phone" validate:"required"`
		Address    string `json:"address" validate:"required"`
		PostalCode string `json:"postal_code"`
		BirthDate  string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
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

		update := account.ProfileUpdate{
			FirstName:  data.FirstName,
			LastName:   data.LastName,
			Phone:      data.Phone,
			Address:    data.Address,
			PostalCode: data.PostalCode,
		}
		if data.BirthDate != "" {
			birthDate, _ := time.Parse(time.DateOnly, data.BirthDate) // validated above
			update.BirthDate = &birthDate
		}

		updated, err := accountService.UpdateProfile(r.Context(), acc.ID, update)

		switch {
		case err == nil:
			render.JSON(w, toProfileResponse(updated))
		case errors.Is(err, apperrors.ErrAccountNotFound):
			render.ServiceError(w, "Account not found", http.StatusNotFound)
		default:
			l.Error("Failed to update profile", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
