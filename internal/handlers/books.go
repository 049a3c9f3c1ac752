package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/handlers/render"
	"github.com/okunev/bookmart/internal/logger"
	"github.com/okunev/bookmart/internal/models"
)

type bookResponse struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	Price  float64   `json:"price"`
}

func toBookResponse(book models.Book) bookResponse {
	price, _ := book.Price.Float64()
	return bookResponse{
		ID:     book.ID,
		Title:  book.Title,
		Author: book.Author,
		Price:  price,
	}
}

func handleListBooks(catalogService catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		books, err := catalogService.Search(r.Context(), r.URL.Query().Get("title"))
		if err != nil {
			l.Error("Failed to list books", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]bookResponse, 0, len(books))
		for _, book := range books {
			response = append(response, toBookResponse(book))
		}
		render.JSON(w, response)
	})
}

func handleGetBook(catalogService catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bookID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid book id", http.StatusBadRequest)
			return
		}

		book, err := catalogService.GetBook(r.Context(), bookID)

		switch {
		case err == nil:
			render.JSON(w, toBookResponse(book))
		case errors.Is(err, apperrors.ErrBookNotFound):
			render.ServiceError(w, "Book not found", http.StatusNotFound)
		default:
			l.Error("Failed to get book", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAddBook(catalogService catalogService, l logger.Logger) http.Handler {
	type request struct {
		Title  string          `json:"title" validate:"required"`
		Author string          `json:"author" validate:"required"`
		Price  decimal.Decimal `json:"price" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if data.Price.IsNegative() {
			render.ServiceError(w, "Price must not be negative", http.StatusBadRequest)
			return
		}

		book, err := catalogService.AddBook(r.Context(), data.Title, data.Author, data.Price)
		if err != nil {
			l.Error("Failed to add book", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, toBookResponse(book), http.StatusCreated)
	})
}
