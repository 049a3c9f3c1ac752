package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/okunev/bookmart/internal/handlers"
	"github.com/okunev/bookmart/internal/logger"
	"github.com/okunev/bookmart/internal/repository"
	"github.com/okunev/bookmart/internal/repository/postgres"
	"github.com/okunev/bookmart/internal/service/account"
	"github.com/okunev/bookmart/internal/service/auth"
	"github.com/okunev/bookmart/internal/service/basket"
	"github.com/okunev/bookmart/internal/service/catalog"
	"github.com/okunev/bookmart/internal/service/checkout"
	"github.com/okunev/bookmart/internal/service/giftcard"
	"github.com/okunev/bookmart/internal/service/order"
	"github.com/okunev/bookmart/internal/testutil"
)

type Services struct {
	Storage repository.Storage
	Auth    *auth.AuthService
}

// ServeInTx runs the full http stack over one database transaction and
// rolls it back at test end, so the database stays clean between tests.
// The transaction is passed to fn so seed data can go through the same
// connection the server uses.
func ServeInTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, s Services)) {
	t.Helper()

	testutil.InTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		authService, err := auth.NewService(auth.Config{SecretKey: "test-secret"}, storage)
		require.NoError(t, err, "auth service should be created without errors")

		router := handlers.NewRouter(handlers.Services{
			Auth:     authService,
			Account:  account.NewService(storage.Account()),
			Catalog:  catalog.NewService(storage.Book()),
			Basket:   basket.NewService(storage),
			Checkout: checkout.NewService(storage),
			GiftCard: giftcard.NewService(storage),
			Order:    order.NewService(storage.Order()),
		}, logger.NewNoOp())

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			Storage: storage,
			Auth:    authService,
		})
	})
}
