package main

import (
	"context"
	"log"
	"os"

	"instant-checkout/internal/config"
	"instant-checkout/internal/db"
	"instant-checkout/internal/seed"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, logger); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied: store=%s customer=%s", seed.StoreKey, seed.CustomerEmail)
}
