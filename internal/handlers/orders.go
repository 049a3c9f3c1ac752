package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okunev/bookmart/internal/handlers/render"
	"github.com/okunev/bookmart/internal/logger"
	"github.com/okunev/bookmart/internal/models"
)

type orderItemResponse struct {
	BookID    uuid.UUID `json:"book_id"`
	Title     string    `json:"title"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

type orderResponse struct {
	ID        uuid.UUID           `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Total     float64             `json:"total"`
	Items     []orderItemResponse `json:"items"`
}

func toOrderResponse(order models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		unitPrice, _ := item.UnitPrice.Float64()
		items = append(items, orderItemResponse{
			BookID:    item.BookID,
			Title:     item.Title,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
		})
	}

	total, _ := order.Total.Float64()

	return orderResponse{
		ID:        order.ID,
		CreatedAt: order.CreatedAt,
		Total:     total,
		Items:     items,
	}
}

func handleListOrders(accountService accountService, orderService orderService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := resolveAccount(w, r, accountService)
		if !ok {
			return
		}

		orders, err := orderService.ListForAccount(r.Context(), acc.ID)
		if err != nil {
			l.Error("Failed to list orders", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]orderResponse, 0, len(orders))
		for _, order := range orders {
			response = append(response, toOrderResponse(order))
		}
		render.JSON(w, response)
	})
}
