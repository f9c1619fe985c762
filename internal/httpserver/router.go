package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"instant-checkout/internal/domain"
	"instant-checkout/internal/metrics"
	"instant-checkout/internal/service/checkout"
	customersvc "instant-checkout/internal/service/customer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type storeCtxKeyType struct{}

var storeCtxKey = storeCtxKeyType{}

// StoreRepo resolves the store named in the request path.
type StoreRepo interface {
	GetByKey(ctx context.Context, key string) (*domain.Store, error)
}

type ProductSvc interface {
	List(ctx context.Context, storeID string) ([]domain.Product, error)
	Find(ctx context.Context, storeID, id, sku string) (*domain.Product, error)
}

type CartSvc interface {
	GetForCustomer(ctx context.Context, storeID, customerID, cartID string) (*domain.Cart, error)
	GetActive(ctx context.Context, storeID, customerID string) (*domain.Cart, error)
}

type PaymentSvc interface {
	Available(ctx context.Context, storeID string, cart *domain.Cart) ([]domain.PaymentMethod, error)
}

type OrderSvc interface {
	GetForCustomer(ctx context.Context, storeID, customerID, incrementID string) (*domain.Order, error)
}

type CustomerSvc interface {
	Signup(ctx context.Context, storeID string, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, storeID, email, password string) (*customersvc.Session, error)
	LookupByToken(ctx context.Context, storeID, token string) (*domain.Customer, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Customer, error)
	AccessTTLSeconds() int
}

type AnonymousSvc interface {
	Issue(ctx context.Context, storeID string) (accessToken, refreshToken, anonymousID string, err error)
	LookupByToken(ctx context.Context, storeID, token string) (string, error)
	AccessTTLSeconds() int
}

type CheckoutSvc interface {
	Execute(ctx context.Context, store domain.Store, req checkout.Request) (*checkout.Result, error)
}

// Deps groups the services the router needs. Nil services leave their routes unregistered.
type Deps struct {
	StoreRepo    StoreRepo
	ProductSvc   ProductSvc
	CartSvc      CartSvc
	CustomerSvc  CustomerSvc
	AnonymousSvc AnonymousSvc
	CheckoutSvc  CheckoutSvc
	PaymentSvc   PaymentSvc
	OrderSvc     OrderSvc
	// HTTPMetrics and MetricsHandler are optional.
	HTTPMetrics    *metrics.HTTP
	MetricsHandler http.Handler
	// TriggerToken enables the server-to-server checkout route when set.
	TriggerToken string
	// ReadyChecks run on /readyz after the database ping.
	ReadyChecks map[string]ReadyCheck
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.StoreRepo == nil {
		return nil, errors.New("httpserver: store repository is required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Authorization", "Content-Type", triggerTokenHeader},
	}))
	if deps.HTTPMetrics != nil {
		router.Use(deps.HTTPMetrics.Middleware())
	}
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.ReadyChecks))
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	stores := storeMiddleware(deps.StoreRepo)
	scoped := router.Group("/:storeKey", stores)
	oauth := router.Group("/oauth/:storeKey", stores)

	if deps.CustomerSvc != nil {
		scoped.POST("/me/signup", signupHandler(deps.CustomerSvc))
		scoped.GET("/me", meHandler(deps.CustomerSvc))
		oauth.POST("/customers/token", customerTokenHandler(deps.CustomerSvc))
	}
	if deps.AnonymousSvc != nil {
		oauth.POST("/anonymous/token", anonymousTokenHandler(deps.AnonymousSvc))
	}
	if deps.ProductSvc != nil {
		scoped.GET("/products", listProductsHandler(deps.ProductSvc))
	}
	if deps.CartSvc != nil && deps.CustomerSvc != nil {
		scoped.GET("/me/active-cart", myActiveCartHandler(deps.CustomerSvc, deps.CartSvc))
		scoped.GET("/me/carts/:id", myCartHandler(deps.CustomerSvc, deps.CartSvc))
		if deps.PaymentSvc != nil {
			scoped.GET("/me/carts/:id/payment-methods", cartPaymentMethodsHandler(deps.CustomerSvc, deps.CartSvc, deps.PaymentSvc))
		}
	}
	if deps.OrderSvc != nil && deps.CustomerSvc != nil {
		scoped.GET("/me/orders/:orderNumber", myOrderHandler(deps.CustomerSvc, deps.OrderSvc))
	}
	if deps.CheckoutSvc != nil && deps.ProductSvc != nil && deps.CustomerSvc != nil {
		h := &checkoutHandler{
			products:  deps.ProductSvc,
			customers: deps.CustomerSvc,
			anonymous: deps.AnonymousSvc,
			checkout:  deps.CheckoutSvc,
			logger:    logger,
		}
		scoped.POST("/me/instant-checkout", h.me)
		if deps.TriggerToken != "" {
			scoped.POST("/instant-checkout", triggerTokenMiddleware(deps.TriggerToken), h.trigger)
		}
	}

	return router, nil
}

// storeMiddleware loads the store named by :storeKey into the request context.
func storeMiddleware(repo StoreRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("storeKey")
		if key == "" {
			abortWithError(c, http.StatusBadRequest, "store key is required")
			return
		}
		store, err := repo.GetByKey(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				abortWithError(c, http.StatusNotFound, "store not found")
				return
			}
			abortWithError(c, http.StatusInternalServerError, "failed to load store")
			return
		}
		ctx := context.WithValue(c.Request.Context(), storeCtxKey, *store)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func storeFromContext(c *gin.Context) (domain.Store, bool) {
	store, ok := c.Request.Context().Value(storeCtxKey).(domain.Store)
	return store, ok
}

// mustStore returns the store set by storeMiddleware or aborts with 500.
func mustStore(c *gin.Context) (domain.Store, bool) {
	store, ok := storeFromContext(c)
	if !ok {
		abortWithError(c, http.StatusInternalServerError, "store missing in context")
	}
	return store, ok
}
