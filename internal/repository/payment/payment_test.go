package payment

import (
	"context"
	"errors"
	"os"
	"testing"

	"instant-checkout/internal/domain"
	"instant-checkout/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_UpsertGetList(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE payment_methods, stores RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	var storeID string
	if err := pool.QueryRow(ctx, `INSERT INTO stores (key, name) VALUES ('main', 'Main') RETURNING id::text`).Scan(&storeID); err != nil {
		t.Fatalf("insert store: %v", err)
	}

	repo := NewPostgres(pool)
	max := int64(50000)
	if err := repo.Upsert(ctx, storeID, domain.PaymentMethod{Code: "cashondelivery", Title: "Cash", Active: true, MaxTotalCents: &max, SortOrder: 2}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(ctx, storeID, domain.PaymentMethod{Code: domain.FreePaymentMethodCode, Title: "Free", Active: true, SortOrder: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Get(ctx, storeID, "cashondelivery")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MaxTotalCents == nil || *got.MaxTotalCents != max || got.MinTotalCents != nil {
		t.Fatalf("unexpected bounds %+v", got)
	}

	list, err := repo.List(ctx, storeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Code != domain.FreePaymentMethodCode {
		t.Fatalf("unexpected order %+v", list)
	}

	if _, err := repo.Get(ctx, storeID, "banktransfer"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_ListSorted(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Upsert(ctx, "s", domain.PaymentMethod{Code: "checkmo", SortOrder: 3})
	_ = m.Upsert(ctx, "s", domain.PaymentMethod{Code: "banktransfer", SortOrder: 3})
	_ = m.Upsert(ctx, "s", domain.PaymentMethod{Code: "free", SortOrder: 1})

	list, err := m.List(ctx, "s")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"free", "banktransfer", "checkmo"}
	for i, code := range want {
		if list[i].Code != code {
			t.Fatalf("position %d: expected %s, got %s", i, code, list[i].Code)
		}
	}
	if _, err := m.Get(ctx, "other", "free"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
