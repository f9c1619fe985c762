package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type pagedResponse[T any] struct {
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Count   int `json:"count"`
	Total   int `json:"total"`
	Results []T `json:"results"`
}

func listProductsHandler(svc ProductSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := mustStore(c)
		if !ok {
			return
		}
		products, err := svc.List(c.Request.Context(), store.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		results := make([]ctProduct, 0, len(products))
		for _, p := range products {
			results = append(results, toCTProduct(p))
		}
		c.JSON(http.StatusOK, pagedResponse[ctProduct]{
			Limit:   len(results),
			Count:   len(results),
			Total:   len(results),
			Results: results,
		})
	}
}

func myCartHandler(customers CustomerSvc, carts CartSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := requireCustomer(c, customers)
		if !ok {
			return
		}
		cart, err := carts.GetForCustomer(c.Request.Context(), cust.StoreID, cust.ID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCTCart(*cart))
	}
}

func myActiveCartHandler(customers CustomerSvc, carts CartSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := requireCustomer(c, customers)
		if !ok {
			return
		}
		cart, err := carts.GetActive(c.Request.Context(), cust.StoreID, cust.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCTCart(*cart))
	}
}

type paymentMethodResponse struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// cartPaymentMethodsHandler lists the methods the cart could be paid with
// right now. Instant checkout applies the same rules.
func cartPaymentMethodsHandler(customers CustomerSvc, carts CartSvc, payments PaymentSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := requireCustomer(c, customers)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cart, err := carts.GetForCustomer(ctx, cust.StoreID, cust.ID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		methods, err := payments.Available(ctx, cust.StoreID, cart)
		if err != nil {
			writeError(c, err)
			return
		}
		results := make([]paymentMethodResponse, 0, len(methods))
		for _, m := range methods {
			results = append(results, paymentMethodResponse{Code: m.Code, Title: m.Title})
		}
		c.JSON(http.StatusOK, pagedResponse[paymentMethodResponse]{
			Limit:   len(results),
			Count:   len(results),
			Total:   len(results),
			Results: results,
		})
	}
}

func myOrderHandler(customers CustomerSvc, orders OrderSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := requireCustomer(c, customers)
		if !ok {
			return
		}
		o, err := orders.GetForCustomer(c.Request.Context(), cust.StoreID, cust.ID, c.Param("orderNumber"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCTOrder(*o))
	}
}
