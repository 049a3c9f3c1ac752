package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/repository"
)

type Service struct {
	bookRepo repository.BookRepo
}

func NewService(bookRepo repository.BookRepo) *Service {
	return &Service{bookRepo: bookRepo}
}

func (s *Service) AddBook(ctx context.Context, title string, author string, price decimal.Decimal) (models.Book, error) {
	return s.bookRepo.CreateBook(ctx, title, author, price)
}

func (s *Service) GetBook(ctx context.Context, bookID uuid.UUID) (models.Book, error) {
	return s.bookRepo.GetBook(ctx, bookID)
}

// Search lists books, filtered by a title substring when filter is not empty
func (s *Service) Search(ctx context.Context, titleFilter string) ([]models.Book, error) {
	return s.bookRepo.ListBooks(ctx, titleFilter)
}
