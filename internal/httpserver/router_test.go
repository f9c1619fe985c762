package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"instant-checkout/internal/domain"
	"instant-checkout/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type stubStoreRepo struct {
	store *domain.Store
	err   error
}

func (s *stubStoreRepo) GetByKey(_ context.Context, _ string) (*domain.Store, error) {
	return s.store, s.err
}

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestStoreMiddleware_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubStoreRepo{
		store: &domain.Store{ID: "123", Key: "main", Name: "Main", Currency: "USD"},
	}
	router := gin.New()
	router.Use(storeMiddleware(repo))
	router.GET("/stores/:storeKey/test", func(c *gin.Context) {
		store, ok := storeFromContext(c)
		if !ok {
			t.Fatalf("expected store in context")
		}
		if store.Key != "main" {
			t.Fatalf("unexpected store %q", store.Key)
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stores/main/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestStoreMiddleware_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubStoreRepo{err: domain.ErrNotFound}
	router := gin.New()
	router.Use(storeMiddleware(repo))
	router.GET("/stores/:storeKey/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stores/missing/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestStoreMiddleware_Error(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubStoreRepo{err: errors.New("boom")}
	router := gin.New()
	router.Use(storeMiddleware(repo))
	router.GET("/stores/:storeKey/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stores/main/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestStoreMiddleware_MissingKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubStoreRepo{}
	router := gin.New()
	router.Use(storeMiddleware(repo))
	router.GET("/stores/:storeKey/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stores//test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestBuildRouter_RequiresStoreRepo(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}); err == nil {
		t.Fatalf("expected error without store repository")
	}
}

func TestHealthAndReady(t *testing.T) {
	router, err := buildRouter(logDiscard(), nil, Deps{StoreRepo: &stubStoreRepo{}})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz without db: expected 503, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"payment", domain.ErrPaymentMethodUnavailable, http.StatusUnprocessableEntity},
		{"wrapped address", errors.Join(errors.New("billing"), domain.ErrNoDefaultAddress), http.StatusUnprocessableEntity},
		{"total out of range", domain.ErrTotalOutOfRange, http.StatusUnprocessableEntity},
		{"persistence", &checkout.Error{Step: checkout.StepCloseCart, Err: &checkout.PersistenceError{Err: errors.New("conn reset")}}, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
