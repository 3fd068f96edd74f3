package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/policy"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/bind"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type placeOrderRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// Place creates an order for the product in the URL. The order is pending
// immediately; email, invoice and stock decrement run in the background.
func (c *OrderController) Place(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req placeOrderRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	actor := policy.Actor{UserID: claims.UserID, Role: claims.Role}
	order, err := c.orders.Place(actor, productID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Forbidden(w)
		case errors.Is(err, services.ErrNotFound):
			response.NotFound(w)
		case errors.Is(err, services.ErrInsufficientStock):
			response.Error(w, http.StatusConflict, "insufficient stock")
		case errors.Is(err, services.ErrInvalidQuantity):
			response.Error(w, http.StatusBadRequest, err.Error())
		default:
			response.Error(w, http.StatusInternalServerError, "could not place order")
		}
		return
	}
	response.Created(w, order)
}

// Index lists the caller's orders: customers see what they bought,
// sellers see what was ordered from them.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var (
		list []models.Order
		err  error
	)
	if claims.Role == models.RoleSeller {
		list, err = c.orders.ListForSeller(claims.UserID)
	} else {
		list, err = c.orders.ListForUser(claims.UserID)
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load orders")
		return
	}
	response.Success(w, list)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,in=pending,shipped,delivered,cancelled"`
}

// UpdateStatus moves an order to a new status. Only the seller of the
// ordered product may do this, and only along allowed transitions.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	actor := policy.Actor{UserID: claims.UserID, Role: claims.Role}
	order, err := c.orders.UpdateStatus(actor, orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Forbidden(w)
		case errors.Is(err, services.ErrNotFound):
			response.NotFound(w)
		case errors.Is(err, services.ErrInvalidTransition):
			response.Error(w, http.StatusUnprocessableEntity, err.Error())
		default:
			response.Error(w, http.StatusInternalServerError, "could not update order")
		}
		return
	}
	response.Success(w, order)
}
