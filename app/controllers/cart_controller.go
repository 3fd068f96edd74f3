package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/policy"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/bind"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

type addToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var req addToCartRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	actor := policy.Actor{UserID: claims.UserID, Role: claims.Role}
	item, err := c.cart.Add(actor, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Forbidden(w)
		case errors.Is(err, services.ErrNotFound):
			response.NotFound(w)
		case errors.Is(err, services.ErrInvalidQuantity):
			response.Error(w, http.StatusBadRequest, err.Error())
		default:
			response.Error(w, http.StatusInternalServerError, "could not add to cart")
		}
		return
	}
	response.Created(w, item)
}

func (c *CartController) Index(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	items, err := c.cart.List(claims.UserID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load cart")
		return
	}
	response.Success(w, items)
}

func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	if err := c.cart.Remove(claims.UserID, productID); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not update cart")
		return
	}
	response.Message(w, "removed")
}

// Checkout places an order for every cart line. Partial failure is a 207:
// the response lists placed orders and per-product errors side by side.
func (c *CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	actor := policy.Actor{UserID: claims.UserID, Role: claims.Role}
	placed, failed := c.cart.Checkout(actor)

	if len(failed) == 0 {
		response.Created(w, placed)
		return
	}

	failures := make(map[uint]string, len(failed))
	for id, err := range failed {
		failures[id] = err.Error()
	}
	response.SuccessStatus(w, http.StatusMultiStatus, map[string]interface{}{
		"orders": placed,
		"failed": failures,
	})
}
