package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ecomweb/internal/config"
	"ecomweb/internal/db"
	"ecomweb/internal/httpserver"
	cartrepo "ecomweb/internal/repository/cart"
	catalogrepo "ecomweb/internal/repository/catalog"
	"ecomweb/internal/repository/inventory"
	orderrepo "ecomweb/internal/repository/order"
	userrepo "ecomweb/internal/repository/user"
	cartsvc "ecomweb/internal/service/cart"
	catalogsvc "ecomweb/internal/service/catalog"
	checkoutsvc "ecomweb/internal/service/checkout"
	ordersvc "ecomweb/internal/service/order"
	usersvc "ecomweb/internal/service/user"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	ledger := inventory.NewPostgres(dbpool, logger)
	catalogRepo := catalogrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	userRepo := userrepo.NewPostgres(dbpool, logger)

	catalogService := catalogsvc.New(catalogRepo, ledger)
	cartService := cartsvc.New(cartRepo, catalogRepo)
	checkoutService := checkoutsvc.New(dbpool, cartRepo, orderRepo, ledger, logger)
	orderService := ordersvc.New(dbpool, orderRepo, ledger, logger)
	userService := usersvc.New(userRepo)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CatalogSvc:  catalogService,
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		OrderSvc:    orderService,
		UserSvc:     userService,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
