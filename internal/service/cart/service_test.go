package cart

import (
	"context"
	"errors"
	"testing"

	"instant-checkout/internal/domain"
)

type stubRepo struct {
	cart       *domain.Cart
	getErr     error
	activeCart *domain.Cart
	activeErr  error
	lastStore  string
	lastID     string
}

func (s *stubRepo) GetByID(_ context.Context, storeID, id string) (*domain.Cart, error) {
	s.lastStore = storeID
	s.lastID = id
	return s.cart, s.getErr
}

func (s *stubRepo) GetActiveByCustomer(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.activeCart, s.activeErr
}

func TestGetForCustomer_ReturnsOwnedCart(t *testing.T) {
	owner := "cust-1"
	repo := &stubRepo{cart: &domain.Cart{ID: "cart-1", CustomerID: &owner}}
	svc := New(repo)

	cart, err := svc.GetForCustomer(context.Background(), "store-1", "cust-1", "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.ID != "cart-1" || repo.lastStore != "store-1" || repo.lastID != "cart-1" {
		t.Fatalf("unexpected lookup %+v store=%s id=%s", cart, repo.lastStore, repo.lastID)
	}
}

func TestGetForCustomer_HidesForeignCart(t *testing.T) {
	owner := "cust-2"
	svc := New(&stubRepo{cart: &domain.Cart{ID: "cart-1", CustomerID: &owner}})

	if _, err := svc.GetForCustomer(context.Background(), "store-1", "cust-1", "cart-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	svc = New(&stubRepo{cart: &domain.Cart{ID: "cart-2"}})
	if _, err := svc.GetForCustomer(context.Background(), "store-1", "cust-1", "cart-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unowned cart, got %v", err)
	}
}

func TestGetForCustomer_PropagatesRepoError(t *testing.T) {
	boom := errors.New("boom")
	svc := New(&stubRepo{getErr: boom})
	if _, err := svc.GetForCustomer(context.Background(), "store-1", "cust-1", "cart-1"); !errors.Is(err, boom) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestGetActive(t *testing.T) {
	svc := New(&stubRepo{activeErr: domain.ErrNotFound})
	if _, err := svc.GetActive(context.Background(), "store-1", "cust-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
