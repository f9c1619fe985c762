package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"instant-checkout/internal/config"
	"instant-checkout/internal/db"
	"instant-checkout/internal/domain"
	"instant-checkout/internal/importer"
	"instant-checkout/internal/repository/product"
	"instant-checkout/internal/repository/store"
)

func main() {
	var (
		filePath string
		storeKey string
		currency string
		lenient  bool
	)
	flag.StringVar(&filePath, "file", "", "Path to product CSV export")
	flag.StringVar(&storeKey, "store", "", "Store key to import into")
	flag.StringVar(&currency, "currency", "USD", "Currency of a store created by the import")
	flag.BoolVar(&lenient, "skip-invalid", false, "Skip invalid products instead of aborting")
	flag.Parse()

	if filePath == "" || storeKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	stores := store.NewPostgres(pool)
	st, err := stores.GetByKey(ctx, storeKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			st, err = stores.Create(ctx, domain.Store{Key: storeKey, Name: storeKey, Currency: currency})
		}
		if err != nil {
			log.Fatalf("ensure store %q: %v", storeKey, err)
		}
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	logger := log.New(os.Stderr, "[importer] ", log.LstdFlags|log.LUTC)
	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, nil), st.ID, importer.Options{
		DefaultCurrency: st.Currency,
		SkipInvalid:     lenient,
		Logger:          logger,
	})

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d products: %v", res.Imported, err)
	}

	fmt.Printf("Imported %d products (%d virtual, %d skipped) into store %s in %s\n",
		res.Imported, res.Virtual, res.Skipped, storeKey, time.Since(start).Truncate(time.Millisecond))
}
