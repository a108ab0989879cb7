package main

import (
	"context"
	"errors"
	"log"
	"os"

	"fluxo-storefront/internal/config"
	"fluxo-storefront/internal/db"
	productrepo "fluxo-storefront/internal/repository/product"
	"fluxo-storefront/internal/seed"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, productrepo.NewPostgres(pool, logger)); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seeded %d products", len(seed.Catalog()))
}
