package httpserver

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"

	"instant-checkout/internal/domain"
	"instant-checkout/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

const triggerTokenHeader = "X-Trigger-Token"

type instantCheckoutRequest struct {
	ProductID             string            `json:"productId"`
	SKU                   string            `json:"sku"`
	Quantity              int               `json:"quantity"`
	Options               map[string]string `json:"options"`
	PaymentMethod         string            `json:"paymentMethod"`
	SkipBillingValidation bool              `json:"skipBillingValidation"`
	ForcePlace            bool              `json:"forcePlace"`
	// CustomerID is read only by the trigger route.
	CustomerID string `json:"customerId"`
}

type instantCheckoutResponse struct {
	Decision  string   `json:"decision"`
	FreeQuote bool     `json:"freeQuote"`
	Cart      ctCart   `json:"cart"`
	Order     *ctOrder `json:"order,omitempty"`
}

type checkoutHandler struct {
	products  ProductSvc
	customers CustomerSvc
	anonymous AnonymousSvc
	checkout  CheckoutSvc
	logger    *log.Logger
}

// me runs a checkout for the customer of the bearer token. Anonymous tokens
// yield a guest session, which the checkout rejects.
func (h *checkoutHandler) me(c *gin.Context) {
	store, ok := mustStore(c)
	if !ok {
		return
	}
	req, ok := bindCheckoutRequest(c)
	if !ok {
		return
	}
	session, ok := h.session(c, store)
	if !ok {
		return
	}
	h.run(c, store, req, checkout.Request{Session: session})
}

// trigger runs a checkout for an explicit customer id.
func (h *checkoutHandler) trigger(c *gin.Context) {
	store, ok := mustStore(c)
	if !ok {
		return
	}
	req, ok := bindCheckoutRequest(c)
	if !ok {
		return
	}
	run := checkout.Request{Customer: &domain.Customer{}}
	if req.CustomerID != "" {
		cust, err := h.customers.GetByID(c.Request.Context(), store.ID, req.CustomerID)
		switch {
		case err == nil:
			run.Customer = cust
		case !errors.Is(err, domain.ErrNotFound):
			writeError(c, err)
			return
		}
	}
	h.run(c, store, req, run)
}

func (h *checkoutHandler) run(c *gin.Context, store domain.Store, req instantCheckoutRequest, run checkout.Request) {
	product, err := h.products.Find(c.Request.Context(), store.ID, req.ProductID, req.SKU)
	if err != nil {
		writeError(c, err)
		return
	}
	run.Product = *product
	run.PaymentMethod = req.PaymentMethod
	run.SkipBillingValidation = req.SkipBillingValidation
	run.ForcePlace = req.ForcePlace
	if req.Quantity != 0 || len(req.Options) > 0 {
		run.ProductRequest = &domain.ProductRequest{Quantity: req.Quantity, Options: req.Options}
	}

	res, err := h.checkout.Execute(c.Request.Context(), store, run)
	if err != nil {
		h.logger.Printf("instant checkout: store=%s product=%s err=%v", store.Key, product.ID, err)
		writeError(c, err)
		return
	}

	out := instantCheckoutResponse{
		Decision:  res.Decision.String(),
		FreeQuote: res.FreeQuote,
		Cart:      toCTCart(*res.Cart),
	}
	if res.Order != nil {
		order := toCTOrder(*res.Order)
		out.Order = &order
	}
	c.JSON(http.StatusCreated, out)
}

// session resolves the bearer token to a customer session, falling back to an
// anonymous session. It aborts with 401 when neither accepts the token.
func (h *checkoutHandler) session(c *gin.Context, store domain.Store) (*checkout.Session, bool) {
	token := bearerToken(c)
	if token == "" {
		abortWithError(c, http.StatusUnauthorized, "missing bearer token")
		return nil, false
	}
	cust, err := h.customers.LookupByToken(c.Request.Context(), store.ID, token)
	if err == nil {
		return &checkout.Session{Customer: cust}, true
	}
	if statusFor(err) != http.StatusUnauthorized {
		writeError(c, err)
		return nil, false
	}
	if h.anonymous != nil {
		if _, anonErr := h.anonymous.LookupByToken(c.Request.Context(), store.ID, token); anonErr == nil {
			return &checkout.Session{}, true
		}
	}
	abortWithError(c, http.StatusUnauthorized, "invalid token")
	return nil, false
}

func bindCheckoutRequest(c *gin.Context) (instantCheckoutRequest, bool) {
	var req instantCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	switch {
	case req.PaymentMethod == "":
		abortWithError(c, http.StatusBadRequest, "paymentMethod is required")
		return req, false
	case req.ProductID == "" && req.SKU == "":
		abortWithError(c, http.StatusBadRequest, "productId or sku is required")
		return req, false
	case req.Quantity < 0 || req.Quantity > domain.MaxQuantity:
		abortWithError(c, http.StatusBadRequest, domain.ErrInvalidQuantity.Error())
		return req, false
	}
	return req, true
}

func triggerTokenMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(triggerTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			abortWithError(c, http.StatusUnauthorized, "invalid trigger token")
			return
		}
		c.Next()
	}
}
