package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okunev/bookmart/internal/apperrors"
	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/repository"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

type Config struct {
	// Secret key to sign access token payload
	SecretKey string

	// Hasher used during registration and login, bcrypt if nil
	Hasher PasswordHasher
}

// AuthService registers and authenticates users.
// Registration creates the user together with its account and basket,
// so an authenticated user always has both.
type AuthService struct {
	token   *TokenManager
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(cfg Config, storage repository.Storage) (*AuthService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	tokenManager, err := NewTokenManager(cfg.SecretKey, storage.Refresh())
	if err != nil {
		return nil, err
	}

	return &AuthService{
		token:   tokenManager,
		hasher:  hasher,
		storage: storage,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username string, password string) (models.TokenPair, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	var user models.User
	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		user, err = storage.User().CreateUser(ctx, username, hash)
		if err != nil {
			return err
		}

		account, err := storage.Account().CreateAccount(ctx, user.ID)
		if err != nil {
			return err
		}

		_, err = storage.Basket().GetBasket(ctx, account.ID)
		return err
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	user, err := s.storage.User().GetUserByUsername(ctx, username)
	if err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
// The used token is burned, each refresh token works exactly once.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	token, err := s.token.UseRefresh(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.storage.User().GetUserByID(ctx, token.UserID)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

// Auth resolves the authenticated user from the request.
// Accepts the access token as a bearer header or a cookie.
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	access := ""

	header := r.Header.Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		access = after
	} else if cookie, err := r.Cookie(accessCookieName); err == nil {
		access = cookie.Value
	}

	if access == "" {
		return models.User{}, errors.New("no access token in request")
	}

	userID, err := s.token.ParseAccess(ctx, access)
	if err != nil {
		return models.User{}, err
	}

	return s.storage.User().GetUserByID(ctx, userID)
}

// SetTokensToResponse sets the token pair as http only cookies
func (s *AuthService) SetTokensToResponse(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    pair.Access.Value,
		Expires:  pair.Access.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.Refresh.Value,
		Expires:  pair.Refresh.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetTokensToRequest authenticates an outgoing request, used by tests
func (s *AuthService) SetTokensToRequest(r *http.Request, pair models.TokenPair) {
	r.Header.Set("Authorization", "Bearer "+pair.Access.Value)
	r.AddCookie(&http.Cookie{Name: refreshCookieName, Value: pair.Refresh.Value})
}

// GetRefresh extracts the refresh token from the request cookie
func (s *AuthService) GetRefresh(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return "", apperrors.ErrRefreshTokenNotFound
	}

	return cookie.Value, nil
}
