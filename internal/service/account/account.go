package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/repository"
)

type Service struct {
	accountRepo repository.AccountRepo
}

func NewService(accountRepo repository.AccountRepo) *Service {
	return &Service{accountRepo: accountRepo}
}

// GetForUser returns the account owned by the user
func (s *Service) GetForUser(ctx context.Context, userID uuid.UUID) (models.Account, error) {
	return s.accountRepo.GetAccountByUserID(ctx, userID)
}

type ProfileUpdate struct {
	FirstName  string
	LastName   string
	Phone      string
	Address    string
	PostalCode string
	BirthDate  *time.Time
}

// UpdateProfile overwrites the profile fields, balance is not touched
func (s *Service) UpdateProfile(ctx context.Context, accountID uuid.UUID, update ProfileUpdate) (models.Account, error) {
	account, err := s.accountRepo.GetAccount(ctx, accountID, false)
	if err != nil {
		return account, err
	}

	account.FirstName = update.FirstName
	account.LastName = update.LastName
	account.Phone = update.Phone
	account.Address = update.Address
	account.PostalCode = update.PostalCode
	account.BirthDate = update.BirthDate

	return s.accountRepo.UpdateProfile(ctx, account)
}
