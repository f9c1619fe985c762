package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"instant-checkout/internal/domain"
	"instant-checkout/internal/service/anonymous"
	"instant-checkout/internal/service/checkout"
	customersvc "instant-checkout/internal/service/customer"
	ordersvc "instant-checkout/internal/service/order"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// unprocessable lists errors caused by the state of the cart, customer or catalog.
var unprocessable = []error{
	domain.ErrPaymentMethodUnavailable,
	domain.ErrNoDefaultAddress,
	domain.ErrCustomerAlreadyAssigned,
	domain.ErrCartInactive,
	domain.ErrInvalidQuantity,
	domain.ErrTotalOutOfRange,
	domain.ErrCurrencyMismatch,
	ordersvc.ErrInvalidCart,
}

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	var placement *checkout.PlacementError
	var persistence *checkout.PersistenceError
	switch {
	case checkout.IsIdentity(err):
		return http.StatusForbidden
	case errors.Is(err, customersvc.ErrInvalidToken), errors.Is(err, anonymous.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.As(err, &placement):
		return http.StatusUnprocessableEntity
	case errors.As(err, &persistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	for _, target := range unprocessable {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// writeError responds with the mapped status. Server errors hide the cause,
// except failed checkout runs, which always report the step's own message.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	var failure *checkout.Error
	if status == http.StatusInternalServerError && !errors.As(err, &failure) {
		msg = "internal error"
	}
	abortWithError(c, status, msg)
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{StatusCode: status, Message: msg})
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
