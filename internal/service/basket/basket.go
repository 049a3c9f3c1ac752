package basket

import (
	"context"

	"github.com/google/uuid"

	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/repository"
)

type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

// Get returns a snapshot of the account basket with its items.
// An account with nothing selected gets an empty basket, never an error.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (models.Basket, error) {
	return s.storage.Basket().GetBasket(ctx, accountID)
}

// AddBook puts quantity copies of the book into the basket and
// returns the updated basket
func (s *Service) AddBook(ctx context.Context, accountID uuid.UUID, bookID uuid.UUID, quantity int) (models.Basket, error) {
	var basket models.Basket

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		book, err := storage.Book().GetBook(ctx, bookID)
		if err != nil {
			return err
		}

		basket, err = storage.Basket().GetBasket(ctx, accountID)
		if err != nil {
			return err
		}

		if _, err := storage.Basket().AddItem(ctx, basket.ID, book, quantity); err != nil {
			return err
		}

		basket, err = storage.Basket().GetBasket(ctx, accountID)
		return err
	})

	return basket, err
}

// RemoveBook drops the book line from the basket entirely
func (s *Service) RemoveBook(ctx context.Context, accountID uuid.UUID, bookID uuid.UUID) (models.Basket, error) {
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		basket, err := storage.Basket().GetBasket(ctx, accountID)
		if err != nil {
			return err
		}

		return storage.Basket().RemoveItem(ctx, basket.ID, bookID)
	})
	if err != nil {
		return models.Basket{}, err
	}

	return s.storage.Basket().GetBasket(ctx, accountID)
}
