// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db         *gorm.DB
	logger     *logrus.Logger
	bcryptCost int
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger, bcryptCost int) *Migration {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Migration{
		db:         db,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Address{},

		&product.Category{},
		&product.Product{},
		&product.ProductVariant{},

		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		&wishlist.WishlistItem{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates composite indexes the models do not declare
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_active ON product_variants(product_id, is_active)",

		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_variant ON cart_items(user_id, product_variant_id)",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_addresses_user_type ON addresses(user_id, type)",
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_user_created ON wishlist_items(user_id, created_at DESC)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("database indexes created")

	if failed > 0 {
		return fmt.Errorf("%d of %d indexes could not be created", failed, len(indexes))
	}
	return nil
}

// SeedInitialData inserts development data. Existing rows are left alone so
// the seed can run on every start.
func (m *Migration) SeedInitialData() error {
	m.logger.Info("seeding initial data")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedUser("admin@example.com", "admin123", "Admin", "User", true); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedUser("test1@example.com", "test123", "Test", "User", false); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}
	if err := m.seedTestAddress("test1@example.com"); err != nil {
		return fmt.Errorf("failed to seed test address: %w", err)
	}
	if err := m.seedTestProducts(); err != nil {
		return fmt.Errorf("failed to seed test products: %w", err)
	}

	m.logger.Info("initial data seeded")
	return nil
}

func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "Electronics", Slug: "electronics", Description: "Electronic devices, gadgets, and accessories", SortOrder: 1, IsActive: true},
		{Name: "Clothing", Slug: "clothing", Description: "Fashion, apparel, and accessories", SortOrder: 2, IsActive: true},
		{Name: "Books", Slug: "books", Description: "Books, eBooks, and educational materials", SortOrder: 3, IsActive: true},
		{Name: "Home & Garden", Slug: "home-garden", Description: "Home improvement, furniture, and garden supplies", SortOrder: 4, IsActive: true},
	}

	for _, category := range categories {
		category := category
		err := m.db.Where(product.Category{Slug: category.Slug}).FirstOrCreate(&category).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) seedUser(email, password, firstName, lastName string, admin bool) error {
	var existing user.User
	err := m.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		m.logger.WithField("email", email).Debug("user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	seeded := user.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		IsAdmin:   admin,
	}
	if !admin {
		seeded.Phone = "+15555550123"
	}
	if err := m.db.Create(&seeded).Error; err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{"email": email, "user_id": seeded.ID}).Info("seeded user")
	return nil
}

// seedTestAddress gives the test user a default shipping address so the
// checkout form comes up pre-filled.
func (m *Migration) seedTestAddress(email string) error {
	var owner user.User
	if err := m.db.Where("email = ?", email).First(&owner).Error; err != nil {
		return err
	}

	address := user.Address{
		UserID:       owner.ID,
		Type:         "shipping",
		AddressLine1: "742 Evergreen Terrace",
		City:         "Springfield",
		State:        "Oregon",
		PostalCode:   "97403",
		Country:      "United States",
		IsDefault:    true,
	}
	return m.db.
		Where(user.Address{UserID: owner.ID, Type: "shipping", IsDefault: true}).
		FirstOrCreate(&address).Error
}

func (m *Migration) seedTestProducts() error {
	var electronics, clothing product.Category
	if err := m.db.Where("slug = ?", "electronics").First(&electronics).Error; err != nil {
		return err
	}
	if err := m.db.Where("slug = ?", "clothing").First(&clothing).Error; err != nil {
		return err
	}

	testProducts := []product.Product{
		{
			SKU:         "SF-LAPTOP-001",
			Name:        "Premium Laptop",
			Slug:        "premium-laptop",
			Description: "Thin and light laptop with a full day of battery.",
			ShortDesc:   "Thin and light laptop",
			Price:       129999,
			CategoryID:  electronics.ID,
			IsActive:    true,
			IsFeatured:  true,
		},
		{
			SKU:         "SF-MOUSE-001",
			Name:        "Wireless Mouse",
			Slug:        "wireless-mouse",
			Description: "Ergonomic wireless mouse with a precision sensor.",
			ShortDesc:   "Ergonomic wireless mouse",
			Price:       7999,
			CategoryID:  electronics.ID,
			IsActive:    true,
		},
		{
			SKU:         "SF-HOODIE-001",
			Name:        "Classic Hoodie",
			Slug:        "classic-hoodie",
			Description: "Heavyweight cotton hoodie.",
			ShortDesc:   "Heavyweight cotton hoodie",
			Price:       5900,
			CategoryID:  clothing.ID,
			IsActive:    true,
			Variants: []product.ProductVariant{
				{SKU: "SF-HOODIE-001-S", Name: "Small", IsActive: true},
				{SKU: "SF-HOODIE-001-M", Name: "Medium", IsActive: true},
				{SKU: "SF-HOODIE-001-XL", Name: "Extra Large", Price: 6400, IsActive: true},
			},
		},
	}

	for _, prod := range testProducts {
		prod := prod
		var count int64
		if err := m.db.Model(&product.Product{}).Where("sku = ?", prod.SKU).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := m.db.Create(&prod).Error; err != nil {
			m.logger.WithError(err).WithField("sku", prod.SKU).Warn("failed to create test product")
			continue
		}
		m.logger.WithField("sku", prod.SKU).Info("seeded product")
	}
	return nil
}

// TableCounts returns the number of rows per table
func (m *Migration) TableCounts() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: m.db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		var count int64
		if err := m.db.Model(model).Count(&count).Error; err != nil {
			return nil, err
		}
		counts[stmt.Schema.Table] = count
	}
	return counts, nil
}
