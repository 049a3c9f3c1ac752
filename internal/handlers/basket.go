package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/handlers/render"
	"github.com/okunev/bookmart/internal/logger"
	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/service/checkout"
)

type basketItemResponse struct {
	BookID    uuid.UUID `json:"book_id"`
	Title     string    `json:"title"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

type basketResponse struct {
	Items      []basketItemResponse `json:"items"`
	Total      float64              `json:"total"`
	Delivery   float64              `json:"delivery"`
	GrandTotal float64              `json:"grand_total"`
}

func toBasketResponse(basket models.Basket) basketResponse {
	items := make([]basketItemResponse, 0, len(basket.Items))
	for _, item := range basket.Items {
		unitPrice, _ := item.UnitPrice.Float64()
		items = append(items, basketItemResponse{
			BookID:    item.BookID,
			Title:     item.Title,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
		})
	}

	total, _ := basket.Total().Float64()
	delivery, _ := checkout.DeliveryFee.Float64()
	grandTotal, _ := basket.Total().Add(checkout.DeliveryFee).Float64()

	return basketResponse{
		Items:      items,
		Total:      total,
		Delivery:   delivery,
		GrandTotal: grandTotal,
	}
}

func handleGetBasket(accountService accountService, basketService basketService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := resolveAccount(w, r, accountService)
		if !ok {
			return
		}

		basket, err := basketService.Get(r.Context(), acc.ID)
		if err != nil {
			l.Error("Failed to get basket", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, toBasketResponse(basket))
	})
}

func handleAddBasketItem(accountService accountService, basketService basketService, l logger.Logger) http.Handler {
	type request struct {
		BookID   uuid.UUID `json:"book_id" validate:"required"`
		Quantity int       `json:"quantity" validate:"required,gt=0"`
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

		basket, err := basketService.AddBook(r.Context(), acc.ID, data.BookID, data.Quantity)

		switch {
		case err == nil:
			render.JSON(w, toBasketResponse(basket))
		case errors.Is(err, apperrors.ErrBookNotFound):
			render.ServiceError(w, "Book not found", http.StatusNotFound)
		default:
			l.Error("Failed to add basket item", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleRemoveBasketItem(accountService accountService, basketService basketService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := resolveAccount(w, r, accountService)
		if !ok {
			return
		}

		bookID, err := uuid.Parse(r.PathValue("bookID"))
		if err != nil {
			render.ServiceError(w, "Invalid book id", http.StatusBadRequest)
			return
		}

		basket, err := basketService.RemoveBook(r.Context(), acc.ID, bookID)

		switch {
		case err == nil:
			render.JSON(w, toBasketResponse(basket))
		case errors.Is(err, apperrors.ErrItemNotFound):
			render.ServiceError(w, "Item is not in the basket", http.StatusNotFound)
		default:
			l.Error("Failed to remove basket item", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
