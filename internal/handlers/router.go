package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/okunev/bookmart/internal/handlers/middleware"
	"github.com/okunev/bookmart/internal/logger"
	"github.com/okunev/bookmart/internal/models"
	"github.com/okunev/bookmart/internal/service/account"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type Services struct {
	Auth     authService
	Account  accountService
	Catalog  catalogService
	Basket   basketService
	Checkout checkoutService
	GiftCard giftcardService
	Order    orderService
}

func NewRouter(s Services, logger logger.Logger) http.Handler {
	authMiddleware := middleware.AuthMiddleware(s.Auth)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/register", handleRegister(s.Auth, logger))
	api.Handle("POST /auth/login", handleLogin(s.Auth, logger))
	api.Handle("POST /auth/refresh", handleRefresh(s.Auth, logger))

	api.Handle("GET /books", handleListBooks(s.Catalog, logger))
	api.Handle("GET /books/{id}", handleGetBook(s.Catalog, logger))
	api.Handle("POST /books", withAuth(handleAddBook(s.Catalog, logger)))

	api.Handle("GET /account", withAuth(handleGetAccount(s.Account, logger)))
	api.Handle("PUT /account", withAuth(handleUpdateProfile(s.Account, logger)))

	api.Handle("GET /basket", withAuth(handleGetBasket(s.Account, s.Basket, logger)))
	api.Handle("POST /basket/items", withAuth(handleAddBasketItem(s.Account, s.Basket, logger)))
	api.Handle("DELETE /basket/items/{bookID}", withAuth(handleRemoveBasketItem(s.Account, s.Basket, logger)))
	api.Handle("POST /basket/checkout", withAuth(handleCheckout(s.Account, s.Checkout, logger)))

	api.Handle("POST /giftcards/redeem", withAuth(handleRedeemGiftCard(s.Account, s.GiftCard, logger)))

	api.Handle("GET /orders", withAuth(handleListOrders(s.Account, s.Order, logger)))

	root := http.NewServeMux()
	// Metrics sit inside the StripPrefix, so requests are labeled with
	// the matched route pattern instead of a single /api/ bucket
	root.Handle("/api/", http.StripPrefix("/api", chain(api, middleware.MetricsMiddleware())))
	root.Handle("GET /metrics", promhttp.Handler())

	return chain(root, middleware.LoggerMiddleware(logger))
}

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Login user with username and password
	// Has to return apperrors.ErrUserNotFound if user not found or password wrong
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Set auth tokens (access, refresh) to response
	SetTokensToResponse(w http.ResponseWriter, pair models.TokenPair)

	// Get refresh token from request
	GetRefresh(r *http.Request) (string, error)

	// Resolve the authenticated user from the request
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type accountService interface {
	GetForUser(ctx context.Context, userID uuid.UUID) (models.Account, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, update account.ProfileUpdate) (models.Account, error)
}

type catalogService interface {
	AddBook(ctx context.Context, title string, author string, price decimal.Decimal) (models.Book, error)
	GetBook(ctx context.Context, bookID uuid.UUID) (models.Book, error)
	Search(ctx context.Context, titleFilter string) ([]models.Book, error)
}

type basketService interface {
	Get(ctx context.Context, accountID uuid.UUID) (models.Basket, error)
	AddBook(ctx context.Context, accountID uuid.UUID, bookID uuid.UUID, quantity int) (models.Basket, error)
	RemoveBook(ctx context.Context, accountID uuid.UUID, bookID uuid.UUID) (models.Basket, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, accountID uuid.UUID) (models.Order, error)
}

type giftcardService interface {
	Redeem(ctx context.Context, code string, accountID uuid.UUID) (models.Account, error)
}

type orderService interface {
	ListForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Order, error)
}
