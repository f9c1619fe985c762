package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"instant-checkout/internal/config"
	"instant-checkout/internal/db"
	"instant-checkout/internal/domain"
	"instant-checkout/internal/notify"
	cartrepo "instant-checkout/internal/repository/cart"
	customerrepo "instant-checkout/internal/repository/customer"
	orderrepo "instant-checkout/internal/repository/order"
	paymentrepo "instant-checkout/internal/repository/payment"
	productrepo "instant-checkout/internal/repository/product"
	storerepo "instant-checkout/internal/repository/store"
	tokenrepo "instant-checkout/internal/repository/token"
	"instant-checkout/internal/service/checkout"
	customersvc "instant-checkout/internal/service/customer"
	ordersvc "instant-checkout/internal/service/order"
	paymentsvc "instant-checkout/internal/service/payment"
	productsvc "instant-checkout/internal/service/product"
)

type summary struct {
	Decision    string `json:"decision"`
	FreeQuote   bool   `json:"freeQuote"`
	CartID      string `json:"cartId"`
	CartActive  bool   `json:"cartActive"`
	Payment     string `json:"paymentMethod"`
	TotalCents  int64  `json:"totalCents"`
	OrderNumber string `json:"orderNumber,omitempty"`
}

func main() {
	var (
		storeKey    string
		email       string
		sku         string
		payment     string
		qty         int
		skipBilling bool
		force       bool
		dryRun      bool
		timeout     time.Duration
	)
	flag.StringVar(&storeKey, "store", "main", "Store key")
	flag.StringVar(&email, "email", "", "Email of the customer to check out for")
	flag.StringVar(&sku, "sku", "", "SKU of the product to buy")
	flag.StringVar(&payment, "payment", "checkmo", "Payment method code")
	flag.IntVar(&qty, "qty", 1, "Quantity")
	flag.BoolVar(&skipBilling, "skip-billing", false, "Attach a stub billing address instead of the customer's default")
	flag.BoolVar(&force, "force", false, "Place the order even when the cart is not free")
	flag.BoolVar(&dryRun, "dry-run", false, "Keep the cart and order in memory; the database is only read")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	if email == "" || sku == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := log.New(os.Stderr, "[checkout] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	store, err := storerepo.NewPostgres(pool).GetByKey(ctx, storeKey)
	if err != nil {
		logger.Fatalf("load store %q: %v", storeKey, err)
	}

	customers := customersvc.New(customerrepo.NewPostgres(pool, logger), tokenrepo.NewPostgres(pool))
	customer, err := customers.GetByEmail(ctx, store.ID, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Fatalf("load customer %q: %v", email, err)
		}
		// An unknown email runs as a guest and is rejected by the checkout.
		customer = &domain.Customer{Email: email}
	}

	product, err := productsvc.New(productrepo.NewPostgres(pool, logger)).Find(ctx, store.ID, "", sku)
	if err != nil {
		logger.Fatalf("load product %q: %v", sku, err)
	}

	carts := cartrepo.NewPostgres(pool)
	orders := orderrepo.NewPostgres(pool, logger)
	payments := paymentrepo.NewPostgres(pool)
	if dryRun {
		carts = cartrepo.NewMemory()
		orders = orderrepo.NewMemory()
		payments, err = snapshotPayments(ctx, payments, store.ID)
		if err != nil {
			logger.Fatalf("load payment methods: %v", err)
		}
		logger.Printf("dry run: cart and order are kept in memory")
	}

	svc := checkout.NewService(checkout.Deps{
		Carts:     carts,
		Customers: customers,
		Payments:  paymentsvc.New(payments, logger),
		Orders:    ordersvc.New(orders, notify.NewLog(logger), logger),
		OrderIDs:  orders,
		Logger:    logger,
	})

	res, err := svc.Execute(ctx, *store, checkout.Request{
		PaymentMethod:         payment,
		Product:               *product,
		Customer:              customer,
		ProductRequest:        &domain.ProductRequest{Quantity: qty},
		SkipBillingValidation: skipBilling,
		ForcePlace:            force,
	})
	if err != nil {
		var runErr *checkout.Error
		if errors.As(err, &runErr) {
			logger.Fatalf("checkout failed at %s: %v", runErr.Step, err)
		}
		logger.Fatalf("checkout failed: %v", err)
	}

	out := summary{
		Decision:   res.Decision.String(),
		FreeQuote:  res.FreeQuote,
		CartID:     res.Cart.ID,
		CartActive: res.Cart.Active,
		Payment:    res.Cart.PaymentMethod,
		TotalCents: res.Cart.TotalCents,
	}
	if res.Order != nil {
		out.OrderNumber = res.Order.IncrementID
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatalf("write result: %v", err)
	}
}

// snapshotPayments copies the store's payment methods into a memory repository
// so a dry run sees the live configuration without holding the database.
func snapshotPayments(ctx context.Context, src paymentrepo.Repository, storeID string) (*paymentrepo.Memory, error) {
	methods, err := src.List(ctx, storeID)
	if err != nil {
		return nil, err
	}
	mem := paymentrepo.NewMemory()
	for _, m := range methods {
		if err := mem.Upsert(ctx, storeID, m); err != nil {
			return nil, err
		}
	}
	return mem, nil
}
