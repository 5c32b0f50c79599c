package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/lmartins/retail-pos/api/routes"
	"github.com/lmartins/retail-pos/internal/catalog"
	"github.com/lmartins/retail-pos/internal/checkout"
	"github.com/lmartins/retail-pos/internal/customers"
	"github.com/lmartins/retail-pos/internal/financial"
	"github.com/lmartins/retail-pos/internal/sales"
	"github.com/lmartins/retail-pos/pkg/config"
	"github.com/lmartins/retail-pos/pkg/db"
	"github.com/lmartins/retail-pos/pkg/logger"
	"github.com/lmartins/retail-pos/pkg/migrate"
	"github.com/lmartins/retail-pos/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, response replay disabled")
	}

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)
	customersRepo := customers.NewRepository(conn)
	salesRepo := sales.NewRepository(conn)
	financialRepo := financial.NewRepository(conn)

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{Repo: catalogRepo, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	customersSvc, err := customers.NewService(customers.ServiceParams{Repo: customersRepo, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
		os.Exit(1)
	}
	financialSvc, err := financial.NewService(financial.ServiceParams{Repo: financialRepo, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create financial service", err)
		os.Exit(1)
	}
	salesSvc, err := sales.NewService(sales.ServiceParams{Repo: salesRepo, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Tx:        dbClient,
		Catalog:   catalogRepo,
		Customers: customersRepo,
		Sales:     salesRepo,
		Financial: financialRepo,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Catalog:   catalogSvc,
			Customers: customersSvc,
			Financial: financialSvc,
			Sales:     salesSvc,
			Checkout:  checkoutSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
