package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/bazaar/app/policy"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/bind"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

const maxImageBytes = 8 << 20

type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// Index lists products; ?search= narrows by name, case-insensitive.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	list, err := c.catalog.List(r.URL.Query().Get("search"))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load products")
		return
	}
	response.Success(w, list)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	product, err := c.catalog.Find(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not load product")
		return
	}
	response.Success(w, product)
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=255"`
	Description string  `json:"description" validate:"nullable,max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"integer,gte=0"`
}

// Store lists a new product under the authenticated seller.
func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	actor := policy.Actor{UserID: claims.UserID, Role: claims.Role}
	if err := policy.Authorize(actor, policy.ActionProductCreate, policy.Resource{}); err != nil {
		response.Forbidden(w)
		return
	}

	var req createProductRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.catalog.Create(claims.UserID, req.Name, req.Description, req.Price, req.Stock)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not create product")
		return
	}
	response.Created(w, product)
}

// Mine lists the authenticated seller's own products.
func (c *ProductController) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	list, err := c.catalog.BySeller(claims.UserID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load products")
		return
	}
	response.Success(w, list)
}

// UploadImage accepts a multipart upload under the "image" field, stores
// it and queues thumbnail generation. The seller must own the product.
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := c.catalog.Find(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not load product")
		return
	}

	actor := policy.Actor{UserID: claims.UserID, Role: claims.Role}
	if err := policy.Authorize(actor, policy.ActionProductUploadImg, policy.Resource{OwnerID: product.SellerID}); err != nil {
		response.Forbidden(w)
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "could not read image")
		return
	}

	updated, err := c.catalog.AttachImage(id, header.Filename, data)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	response.Success(w, updated)
}

// pathID parses a numeric URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.Error(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}
