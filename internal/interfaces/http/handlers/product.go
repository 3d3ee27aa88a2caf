// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	products *product.Service
	logger   *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	response, err := h.products.GetProducts(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("failed to list products")
		respondError(c, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    response,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product ID")
	if !ok {
		return
	}
	h.respondProduct(c, func() (*product.Product, error) {
		return h.products.GetProduct(c.Request.Context(), id)
	})
}

// GetProductBySlug handles GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")
	h.respondProduct(c, func() (*product.Product, error) {
		return h.products.GetProductBySlug(c.Request.Context(), slug)
	})
}

func (h *ProductHandler) respondProduct(c *gin.Context, load func() (*product.Product, error)) {
	prod, err := load()
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("failed to load product")
		respondError(c, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    prod,
	})
}

// GetCategories handles GET /categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.products.GetCategories(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list categories")
		respondError(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    categories,
	})
}

// AdminCreateProduct handles POST /admin/products
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req product.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	prod, err := h.products.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, product.ErrDuplicateSKU) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		h.logger.WithError(err).Error("failed to create product")
		respondError(c, http.StatusInternalServerError, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    prod,
	})
}

// AdminUpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product ID")
	if !ok {
		return
	}

	var req product.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	prod, err := h.products.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("failed to update product")
		respondError(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    prod,
	})
}

// AdminDeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product ID")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("failed to delete product")
		respondError(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}
