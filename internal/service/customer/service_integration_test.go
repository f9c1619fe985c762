package customer

import (
	"context"
	"log"
	"os"
	"testing"

	"instant-checkout/internal/migrate"
	customerrepo "instant-checkout/internal/repository/customer"
	tokenrepo "instant-checkout/internal/repository/token"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestSignupAndLogin_Integration(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	var storeID string
	if err := pool.QueryRow(ctx, `INSERT INTO stores (key, name, currency) VALUES ('main', 'Main', 'USD') RETURNING id::text`).Scan(&storeID); err != nil {
		t.Fatalf("insert store: %v", err)
	}

	repo := customerrepo.NewPostgres(pool, log.New(os.Stdout, "[test] ", log.LstdFlags))
	tokenRepo := tokenrepo.NewPostgres(pool)
	svc := New(repo, tokenRepo)

	password := "Abcdefg1"
	cust, err := svc.Signup(ctx, storeID, SignupInput{
		Email:     "integration@example.com",
		Password:  password,
		FirstName: "Int",
		LastName:  "User",
		Addresses: []AddressInput{
			{Country: "US", StreetName: "Main", PostalCode: "00000", City: "Testville"},
		},
		DefaultShippingAddress: intPtr(0),
		DefaultBillingAddress:  intPtr(0),
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if cust == nil || cust.ID == "" {
		t.Fatalf("expected created customer, got %+v", cust)
	}

	sess, err := svc.Login(ctx, storeID, "Integration@Example.com", password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", sess)
	}
	if sess.Customer.ID != cust.ID {
		t.Fatalf("login returned customer %s, want %s", sess.Customer.ID, cust.ID)
	}

	addr, err := svc.DefaultShippingAddress(ctx, cust)
	if err != nil {
		t.Fatalf("default shipping: %v", err)
	}
	if addr.City != "Testville" {
		t.Fatalf("unexpected address %+v", addr)
	}
}

func integrationPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_lines, orders, cart_lines, carts, products, tokens, customers, stores RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func intPtr(v int) *int {
	return &v
}
