// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound is returned when no active product matches
	ErrProductNotFound = errors.New("product not found")
	// ErrVariantNotFound is returned when the variant does not belong to the product or is inactive
	ErrVariantNotFound = errors.New("product variant not found")
	// ErrDuplicateSKU is returned when creating a product with a SKU already in use
	ErrDuplicateSKU = errors.New("product SKU already exists")
)

// Service handles catalog business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
	MinPrice   int64  `form:"min_price"`
	MaxPrice   int64  `form:"max_price"`
	IsFeatured *bool  `form:"is_featured"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ShortDesc   string `json:"short_description"`
	Price       int64  `json:"price" binding:"required,min=0"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	Image       string `json:"image"`
	IsActive    bool   `json:"is_active"`
	IsFeatured  bool   `json:"is_featured"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ShortDesc   *string `json:"short_description"`
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
	CategoryID  *uint   `json:"category_id"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"is_active"`
	IsFeatured  *bool   `json:"is_featured"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves active products with filtering and pagination
func (s *Service) GetProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	var products []Product
	var total int64

	query := s.db.WithContext(ctx).Model(&Product{}).
		Preload("Category").
		Where("is_active = ?", true)

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}
	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}
	if req.IsFeatured != nil {
		query = query.Where("is_featured = ?", *req.IsFeatured)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	err := query.Order(buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(offset).Limit(req.Limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetProduct retrieves a single active product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	return s.first(ctx, "id = ?", id)
}

// GetProductBySlug retrieves a single active product by slug
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.first(ctx, "slug = ?", slug)
}

func (s *Service) first(ctx context.Context, cond string, arg interface{}) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Variants", "is_active = ?", true).
		Where(cond, arg).
		Where("is_active = ?", true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// Resolve loads an active product and, when variantID is set, the matching
// active variant. The cart uses it to price lines.
func (s *Service) Resolve(ctx context.Context, productID uint, variantID *uint) (*Product, *ProductVariant, error) {
	prod, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if variantID == nil {
		return prod, nil, nil
	}
	for i := range prod.Variants {
		if prod.Variants[i].ID == *variantID {
			return prod, &prod.Variants[i], nil
		}
	}
	return nil, nil, ErrVariantNotFound
}

// GetCategories lists active categories in display order
func (s *Service) GetCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&Product{}).Where("sku = ?", req.SKU).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check SKU: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, req.SKU)
	}

	product := Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Slug:        generateSlug(req.Name),
		Description: req.Description,
		ShortDesc:   req.ShortDesc,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Image:       req.Image,
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
	}

	if err := db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	db.Preload("Category").First(&product, product.ID)
	return &product, nil
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductUpdateRequest) (*Product, error) {
	db := s.db.WithContext(ctx)

	var product Product
	if err := db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = generateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ShortDesc != nil {
		updates["short_desc"] = *req.ShortDesc
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) > 0 {
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	db.Preload("Category").First(&product, product.ID)
	return &product, nil
}

// DeleteProduct soft deletes a product
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
		"updated_at": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug builds a URL-friendly slug with a short random suffix so that
// products sharing a name do not collide.
func generateSlug(name string) string {
	slug := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(name), "-"), "-")
	return slug + "-" + uuid.NewString()[:8]
}
