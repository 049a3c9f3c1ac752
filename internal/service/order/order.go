package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/repository"
)

// Service replays purchase history.
// Orders are created by the checkout service only and never mutated here.
type Service struct {
	orderRepo repository.OrderRepo
}

func NewService(orderRepo repository.OrderRepo) *Service {
	return &Service{orderRepo: orderRepo}
}

// ListForAccount returns the account orders with items, newest first
func (s *Service) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Order, error) {
	return s.orderRepo.ListOrders(ctx, accountID)
}
