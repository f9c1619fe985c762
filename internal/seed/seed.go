package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"instant-checkout/internal/domain"
	customerrepo "instant-checkout/internal/repository/customer"
	paymentrepo "instant-checkout/internal/repository/payment"
	productrepo "instant-checkout/internal/repository/product"
	storerepo "instant-checkout/internal/repository/store"
	tokenrepo "instant-checkout/internal/repository/token"
	customersvc "instant-checkout/internal/service/customer"
	paymentsvc "instant-checkout/internal/service/payment"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Demo credentials created by Apply.
const (
	StoreKey         = "main"
	CustomerEmail    = "demo@example.com"
	CustomerPassword = "Demo12345"
)

// Products inserted by Apply. The e-book is free so it exercises the free-quote path.
var Products = []domain.Product{
	{Key: "demo-shirt", SKU: "SKU-DEMO-TSHIRT", Name: "Demo T-Shirt", Description: "Soft cotton tee for demo purposes", PriceCents: 1999, Currency: "USD"},
	{Key: "demo-mug", SKU: "SKU-DEMO-MUG", Name: "Demo Mug", Description: "Ceramic mug with demo logo", PriceCents: 1299, Currency: "USD"},
	{Key: "demo-gift-card", SKU: "SKU-DEMO-GIFT", Name: "Demo Gift Card", Description: "Emailed gift card", PriceCents: 2500, Currency: "USD", Virtual: true},
	{Key: "demo-ebook", SKU: "SKU-DEMO-EBOOK", Name: "Demo E-Book", Description: "Free downloadable guide", PriceCents: 0, Currency: "USD", Virtual: true},
}

// Apply inserts seed data for manual testing. Running it again updates products
// and payment methods and keeps the existing store and customer.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	store, err := ensureStore(ctx, storerepo.NewPostgres(pool), domain.Store{Key: StoreKey, Name: "Main Store", Currency: "USD"})
	if err != nil {
		return fmt.Errorf("ensure store: %w", err)
	}
	logger.Printf("seed: store key=%s id=%s", store.Key, store.ID)

	products := productrepo.NewPostgres(pool, logger)
	for _, p := range Products {
		p.StoreID = store.ID
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}

	payments := paymentrepo.NewPostgres(pool)
	for _, m := range paymentsvc.DefaultMethods() {
		if err := payments.Upsert(ctx, store.ID, m); err != nil {
			return fmt.Errorf("upsert payment method %s: %w", m.Code, err)
		}
	}

	customers := customersvc.New(customerrepo.NewPostgres(pool, logger), tokenrepo.NewPostgres(pool), customersvc.WithLogger(logger))
	billing := 1
	_, err = customers.Signup(ctx, store.ID, customersvc.SignupInput{
		Email:     CustomerEmail,
		Password:  CustomerPassword,
		FirstName: "Demo",
		LastName:  "Customer",
		Addresses: []customersvc.AddressInput{
			{FirstName: "Demo", LastName: "Customer", Country: "US", StreetName: "1 Market St", PostalCode: "94105", City: "San Francisco"},
			{FirstName: "Demo", LastName: "Customer", Country: "US", StreetName: "500 Billing Ave", PostalCode: "10001", City: "New York", Department: "Accounts"},
		},
		DefaultBillingAddress: &billing,
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		logger.Printf("seed: customer %s already exists", CustomerEmail)
	case err != nil:
		return fmt.Errorf("create customer: %w", err)
	default:
		logger.Printf("seed: customer %s created", CustomerEmail)
	}
	return nil
}

func ensureStore(ctx context.Context, repo storerepo.Repository, s domain.Store) (*domain.Store, error) {
	existing, err := repo.GetByKey(ctx, s.Key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return repo.Create(ctx, s)
}
