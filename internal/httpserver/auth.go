package httpserver

import (
	"errors"
	"net/http"

	"instant-checkout/internal/domain"
	customersvc "instant-checkout/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func signupHandler(svc CustomerSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := mustStore(c)
		if !ok {
			return
		}
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		cust, err := svc.Signup(c.Request.Context(), store.ID, toSignupInput(req))
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				abortWithError(c, http.StatusConflict, "a customer with this email already exists")
				return
			}
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		c.JSON(http.StatusCreated, customerResponse{Customer: toCTCustomer(*cust)})
	}
}

func customerTokenHandler(svc CustomerSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := mustStore(c)
		if !ok {
			return
		}
		var req tokenRequest
		if err := c.ShouldBind(&req); err != nil || req.GrantType != "password" {
			abortWithError(c, http.StatusBadRequest, "grant_type=password with username, password and scope is required")
			return
		}

		sess, err := svc.Login(c.Request.Context(), store.ID, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, customersvc.ErrInvalidCredentials) {
				abortWithError(c, http.StatusUnauthorized, "customer account with the given credentials not found")
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, tokenResponse{
			AccessToken:  sess.AccessToken,
			ExpiresIn:    svc.AccessTTLSeconds(),
			Scope:        req.Scope,
			RefreshToken: sess.RefreshToken,
			TokenType:    "Bearer",
		})
	}
}

func anonymousTokenHandler(svc AnonymousSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := mustStore(c)
		if !ok {
			return
		}
		access, refresh, anonymousID, err := svc.Issue(c.Request.Context(), store.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, tokenResponse{
			AccessToken:  access,
			ExpiresIn:    svc.AccessTTLSeconds(),
			Scope:        "anonymous_id:" + anonymousID,
			RefreshToken: refresh,
			TokenType:    "Bearer",
		})
	}
}

func meHandler(svc CustomerSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := requireCustomer(c, svc)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, toCTCustomer(*cust))
	}
}

// requireCustomer resolves the bearer token to a customer or aborts with 401.
func requireCustomer(c *gin.Context, svc CustomerSvc) (*domain.Customer, bool) {
	store, ok := mustStore(c)
	if !ok {
		return nil, false
	}
	token := bearerToken(c)
	if token == "" {
		abortWithError(c, http.StatusUnauthorized, "missing bearer token")
		return nil, false
	}
	cust, err := svc.LookupByToken(c.Request.Context(), store.ID, token)
	if err != nil {
		if errors.Is(err, customersvc.ErrInvalidToken) || errors.Is(err, domain.ErrNotFound) {
			abortWithError(c, http.StatusUnauthorized, "invalid token")
			return nil, false
		}
		writeError(c, err)
		return nil, false
	}
	return cust, true
}

func toSignupInput(req signupRequest) customersvc.SignupInput {
	addresses := make([]customersvc.AddressInput, 0, len(req.Addresses))
	for _, a := range req.Addresses {
		addresses = append(addresses, customersvc.AddressInput(a))
	}
	return customersvc.SignupInput{
		Email:                  req.Email,
		Password:               req.Password,
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		DateOfBirth:            req.DateOfBirth,
		Addresses:              addresses,
		DefaultShippingAddress: req.DefaultShippingAddress,
		DefaultBillingAddress:  req.DefaultBillingAddress,
	}
}
