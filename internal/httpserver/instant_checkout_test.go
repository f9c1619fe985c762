package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"instant-checkout/internal/domain"
	"instant-checkout/internal/service/checkout"
	customersvc "instant-checkout/internal/service/customer"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProductService struct {
	product *domain.Product
	err     error
}

func (s *stubProductService) List(_ context.Context, _ string) ([]domain.Product, error) {
	if s.product == nil {
		return nil, s.err
	}
	return []domain.Product{*s.product}, s.err
}

func (s *stubProductService) Find(_ context.Context, _, _, _ string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.product == nil {
		return nil, domain.ErrNotFound
	}
	return s.product, nil
}

type stubCheckoutSvc struct {
	got    checkout.Request
	called bool
	res    *checkout.Result
	err    error
}

func (s *stubCheckoutSvc) Execute(_ context.Context, _ domain.Store, req checkout.Request) (*checkout.Result, error) {
	s.called = true
	s.got = req
	return s.res, s.err
}

type stubCartSvc struct {
	cart *domain.Cart
	err  error
}

func (s *stubCartSvc) GetForCustomer(_ context.Context, _, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartSvc) GetActive(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func closedResult() *checkout.Result {
	orderID := "000000001"
	customerID := "cust-id"
	return &checkout.Result{
		Cart: &domain.Cart{
			ID:              "cart-1",
			CustomerID:      &customerID,
			Currency:        "USD",
			PaymentMethod:   "checkmo",
			ReservedOrderID: &orderID,
			TotalCents:      1999,
		},
		Decision: checkout.DecisionClose,
	}
}

func checkoutRouter(t *testing.T, customers *stubCustomerAuthSvc, svc *stubCheckoutSvc, triggerToken string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:    &stubStoreRepo{store: testStore},
		ProductSvc:   &stubProductService{product: &domain.Product{ID: "prod-1", SKU: "SKU-1", PriceCents: 1999, Currency: "USD"}},
		CustomerSvc:  customers,
		AnonymousSvc: &stubAnonymousSvc{anonymousID: "anon-1"},
		CheckoutSvc:  svc,
		TriggerToken: triggerToken,
	})
	require.NoError(t, err)
	return router
}

func postJSON(router *gin.Engine, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMyInstantCheckout_Closed(t *testing.T) {
	customer := &domain.Customer{ID: "cust-id", StoreID: testStore.ID}
	svc := &stubCheckoutSvc{res: closedResult()}
	router := checkoutRouter(t, &stubCustomerAuthSvc{customer: customer}, svc, "")

	rec := postJSON(router, "/main/me/instant-checkout",
		`{"sku":"SKU-1","quantity":2,"options":{"size":"M"},"paymentMethod":"checkmo","skipBillingValidation":true}`,
		map[string]string{"Authorization": "Bearer token"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.True(t, svc.called)
	require.NotNil(t, svc.got.Session)
	assert.Equal(t, customer, svc.got.Session.Customer)
	assert.Nil(t, svc.got.Customer)
	assert.Equal(t, "prod-1", svc.got.Product.ID)
	assert.Equal(t, "checkmo", svc.got.PaymentMethod)
	assert.True(t, svc.got.SkipBillingValidation)
	assert.False(t, svc.got.ForcePlace)
	require.NotNil(t, svc.got.ProductRequest)
	assert.Equal(t, 2, svc.got.ProductRequest.Quantity)
	assert.Equal(t, "M", svc.got.ProductRequest.Options["size"])

	var body struct {
		Decision string `json:"decision"`
		Cart     struct {
			CartState       string `json:"cartState"`
			ReservedOrderID string `json:"reservedOrderId"`
		} `json:"cart"`
		Order *json.RawMessage `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "closed", body.Decision)
	assert.Equal(t, "Ordered", body.Cart.CartState)
	assert.Equal(t, "000000001", body.Cart.ReservedOrderID)
	assert.Nil(t, body.Order)
}

func TestMyInstantCheckout_Placed(t *testing.T) {
	res := closedResult()
	res.Decision = checkout.DecisionPlace
	res.FreeQuote = true
	res.Order = &domain.Order{ID: "order-1", IncrementID: "000000001", CartID: "cart-1", State: domain.OrderStateNew, Currency: "USD"}
	svc := &stubCheckoutSvc{res: res}
	router := checkoutRouter(t, &stubCustomerAuthSvc{customer: &domain.Customer{ID: "cust-id"}}, svc, "")

	rec := postJSON(router, "/main/me/instant-checkout", `{"productId":"prod-1","paymentMethod":"checkmo"}`,
		map[string]string{"Authorization": "Bearer token"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Nil(t, svc.got.ProductRequest)
	assert.Contains(t, rec.Body.String(), `"decision":"placed"`)
	assert.Contains(t, rec.Body.String(), `"orderNumber":"000000001"`)
	assert.Contains(t, rec.Body.String(), `"orderState":"Open"`)
}

func TestMyInstantCheckout_AnonymousTokenIsForbidden(t *testing.T) {
	svc := &stubCheckoutSvc{err: &checkout.Error{Step: checkout.StepAssignCustomer, Err: checkout.IdentityError{}}}
	router := checkoutRouter(t, &stubCustomerAuthSvc{meErr: customersvc.ErrInvalidToken}, svc, "")

	rec := postJSON(router, "/main/me/instant-checkout", `{"sku":"SKU-1","paymentMethod":"checkmo"}`,
		map[string]string{"Authorization": "Bearer anon-access"})

	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	require.True(t, svc.called)
	require.NotNil(t, svc.got.Session)
	assert.Nil(t, svc.got.Session.Customer)
	assert.Contains(t, rec.Body.String(), "the customer must be logged in")
}

func TestMyInstantCheckout_Unauthorized(t *testing.T) {
	svc := &stubCheckoutSvc{}
	router := checkoutRouter(t, &stubCustomerAuthSvc{}, svc, "")

	rec := postJSON(router, "/main/me/instant-checkout", `{"sku":"SKU-1","paymentMethod":"checkmo"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, svc.called)
}

func TestMyInstantCheckout_BadRequest(t *testing.T) {
	router := checkoutRouter(t, &stubCustomerAuthSvc{customer: &domain.Customer{ID: "cust-id"}}, &stubCheckoutSvc{}, "")
	auth := map[string]string{"Authorization": "Bearer token"}

	for name, body := range map[string]string{
		"no payment":   `{"sku":"SKU-1"}`,
		"no product":   `{"paymentMethod":"checkmo"}`,
		"negative qty": `{"sku":"SKU-1","paymentMethod":"checkmo","quantity":-1}`,
		"huge qty":     `{"sku":"SKU-1","paymentMethod":"checkmo","quantity":2305843009213693952}`,
		"not json":     `nope`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postJSON(router, "/main/me/instant-checkout", body, auth)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMyInstantCheckout_ErrorStatus(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		want    int
		message string
	}{
		{"payment unavailable", &checkout.Error{Step: checkout.StepPaymentMethod, Err: domain.ErrPaymentMethodUnavailable}, http.StatusUnprocessableEntity, domain.ErrPaymentMethodUnavailable.Error()},
		{"placement", &checkout.Error{Step: checkout.StepPlaceOrder, Err: &checkout.PlacementError{Err: errors.New("rejected")}}, http.StatusUnprocessableEntity, "rejected"},
		{"persistence", &checkout.Error{Step: checkout.StepAddProduct, Err: &checkout.PersistenceError{Err: errors.New("db down")}}, http.StatusServiceUnavailable, "db down"},
		{"other step error", &checkout.Error{Step: checkout.StepCloseCart, Err: errors.New("sequence missing")}, http.StatusInternalServerError, "sequence missing"},
		{"not a checkout error", errors.New("secret detail"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := checkoutRouter(t, &stubCustomerAuthSvc{customer: &domain.Customer{ID: "cust-id"}}, &stubCheckoutSvc{err: tc.err}, "")
			rec := postJSON(router, "/main/me/instant-checkout", `{"sku":"SKU-1","paymentMethod":"checkmo"}`,
				map[string]string{"Authorization": "Bearer token"})
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestTriggerInstantCheckout(t *testing.T) {
	customer := &domain.Customer{ID: "cust-id", StoreID: testStore.ID}
	svc := &stubCheckoutSvc{res: closedResult()}
	router := checkoutRouter(t, &stubCustomerAuthSvc{customer: customer}, svc, "s3cret")

	rec := postJSON(router, "/main/instant-checkout", `{"customerId":"cust-id","sku":"SKU-1","paymentMethod":"checkmo","forcePlace":true}`,
		map[string]string{triggerTokenHeader: "s3cret"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, customer, svc.got.Customer)
	assert.Nil(t, svc.got.Session)
	assert.True(t, svc.got.ForcePlace)
}

func TestTriggerInstantCheckout_UnknownCustomerIsGuest(t *testing.T) {
	svc := &stubCheckoutSvc{err: &checkout.Error{Step: checkout.StepAssignCustomer, Err: checkout.IdentityError{}}}
	router := checkoutRouter(t, &stubCustomerAuthSvc{getErr: domain.ErrNotFound}, svc, "s3cret")

	rec := postJSON(router, "/main/instant-checkout", `{"customerId":"missing","sku":"SKU-1","paymentMethod":"checkmo"}`,
		map[string]string{triggerTokenHeader: "s3cret"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, svc.got.Customer)
	assert.True(t, svc.got.Customer.IsGuest())
}

func TestTriggerInstantCheckout_BadToken(t *testing.T) {
	svc := &stubCheckoutSvc{}
	router := checkoutRouter(t, &stubCustomerAuthSvc{}, svc, "s3cret")

	rec := postJSON(router, "/main/instant-checkout", `{"customerId":"cust-id","sku":"SKU-1","paymentMethod":"checkmo"}`,
		map[string]string{triggerTokenHeader: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, svc.called)
}

func TestTriggerInstantCheckout_DisabledWithoutToken(t *testing.T) {
	router := checkoutRouter(t, &stubCustomerAuthSvc{}, &stubCheckoutSvc{}, "")

	rec := postJSON(router, "/main/instant-checkout", `{"customerId":"cust-id","sku":"SKU-1","paymentMethod":"checkmo"}`, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMyCartHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	customerID := "cust-id"
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:   &stubStoreRepo{store: testStore},
		CustomerSvc: &stubCustomerAuthSvc{customer: &domain.Customer{ID: customerID, StoreID: testStore.ID}},
		CartSvc:     &stubCartSvc{cart: &domain.Cart{ID: "cart-1", CustomerID: &customerID, Active: true, Currency: "USD"}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/main/me/carts/cart-1", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"cartState":"Active"`)
}

func TestListProductsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:  &stubStoreRepo{store: testStore},
		ProductSvc: &stubProductService{product: &domain.Product{ID: "prod-1", Key: "mug", SKU: "MUG-1", Name: "Mug", PriceCents: 900, Currency: "USD"}},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/main/products", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total":1`)
	assert.Contains(t, rec.Body.String(), `"sku":"MUG-1"`)
}
