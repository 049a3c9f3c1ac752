package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

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
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := repository.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	storage := postgres.NewStorage(pool)

	authService, err := auth.NewService(auth.Config{SecretKey: c.SecretKey}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	router := handlers.NewRouter(handlers.Services{
		Auth:     authService,
		Account:  account.NewService(storage.Account()),
		Catalog:  catalog.NewService(storage.Book()),
		Basket:   basket.NewService(storage),
		Checkout: checkout.NewService(storage),
		GiftCard: giftcard.NewService(storage),
		Order:    order.NewService(storage.Order()),
	}, log)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router,
	}, nil
}

// Run starts the http server and closes it gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until the context is cancelled, then close connections gracefully
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
