package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"instant-checkout/internal/domain"
	customersvc "instant-checkout/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type stubCustomerAuthSvc struct {
	customer *domain.Customer
	loginErr error
	signErr  error
	meErr    error
	getErr   error
}

func (s *stubCustomerAuthSvc) Signup(_ context.Context, _ string, _ customersvc.SignupInput) (*domain.Customer, error) {
	return s.customer, s.signErr
}

func (s *stubCustomerAuthSvc) Login(_ context.Context, _ string, _ string, _ string) (*customersvc.Session, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &customersvc.Session{Customer: s.customer, AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *stubCustomerAuthSvc) LookupByToken(_ context.Context, _ string, _ string) (*domain.Customer, error) {
	return s.customer, s.meErr
}

func (s *stubCustomerAuthSvc) GetByID(_ context.Context, _ string, _ string) (*domain.Customer, error) {
	return s.customer, s.getErr
}

func (s *stubCustomerAuthSvc) AccessTTLSeconds() int {
	return 3600
}

type stubAnonymousSvc struct {
	anonymousID string
	err         error
}

func (s *stubAnonymousSvc) Issue(_ context.Context, _ string) (string, string, string, error) {
	return "anon-access", "anon-refresh", s.anonymousID, s.err
}

func (s *stubAnonymousSvc) LookupByToken(_ context.Context, _ string, _ string) (string, error) {
	return s.anonymousID, s.err
}

func (s *stubAnonymousSvc) AccessTTLSeconds() int {
	return 3600
}

var testStore = &domain.Store{ID: "store-id", Key: "main", Currency: "USD"}

func TestSignupHandler_Created(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authSvc := &stubCustomerAuthSvc{
		customer: &domain.Customer{ID: "cust-id", StoreID: testStore.ID, Email: "user@example.com"},
	}
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:   &stubStoreRepo{store: testStore},
		CustomerSvc: authSvc,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	body := `{"email":"user@example.com","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/main/me/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"user@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSignupHandler_Conflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:   &stubStoreRepo{store: testStore},
		CustomerSvc: &stubCustomerAuthSvc{signErr: domain.ErrAlreadyExists},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/main/me/signup", strings.NewReader(`{"email":"a@b.c","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestTokenHandler_InvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:   &stubStoreRepo{store: testStore},
		CustomerSvc: &stubCustomerAuthSvc{loginErr: customersvc.ErrInvalidCredentials},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", "user@example.com")
	form.Set("password", "wrong")
	form.Set("scope", "manage_my_profile:main")
	req := httptest.NewRequest(http.MethodPost, "/oauth/main/customers/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestTokenHandler_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:   &stubStoreRepo{store: testStore},
		CustomerSvc: &stubCustomerAuthSvc{customer: &domain.Customer{ID: "cust-id"}},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", "user@example.com")
	form.Set("password", "secret123")
	form.Set("scope", "manage_my_profile:main")
	req := httptest.NewRequest(http.MethodPost, "/oauth/main/customers/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"access_token":"access"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAnonymousTokenHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:    &stubStoreRepo{store: testStore},
		AnonymousSvc: &stubAnonymousSvc{anonymousID: "anon-1"},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/oauth/main/anonymous/token", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"scope":"anonymous_id:anon-1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestMeHandler_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:   &stubStoreRepo{store: testStore},
		CustomerSvc: &stubCustomerAuthSvc{},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/main/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMeHandler_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo: &stubStoreRepo{store: testStore},
		CustomerSvc: &stubCustomerAuthSvc{
			customer: &domain.Customer{ID: "cust-id", StoreID: testStore.ID, Email: "me@example.com"},
		},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/main/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"me@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
