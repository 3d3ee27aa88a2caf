package postgres

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrationSeedsDevelopmentData(t *testing.T) {
	db := openTestDB(t)
	m := NewMigration(db, logger.Discard(), bcrypt.MinCost)

	require.NoError(t, m.RunAutoMigrations())
	require.NoError(t, m.CreateIndexes())
	require.NoError(t, m.SeedInitialData())

	var admin user.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.True(t, admin.IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("admin123")))

	var address user.Address
	require.NoError(t, db.Joins("JOIN users ON users.id = addresses.user_id").
		Where("users.email = ? AND addresses.is_default = ?", "test1@example.com", true).
		First(&address).Error)
	assert.Equal(t, "Springfield", address.City)

	var hoodie product.Product
	require.NoError(t, db.Preload("Variants").Where("sku = ?", "SF-HOODIE-001").First(&hoodie).Error)
	assert.Len(t, hoodie.Variants, 3)
}

func TestMigrationSeedIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	m := NewMigration(db, logger.Discard(), bcrypt.MinCost)

	require.NoError(t, m.RunAutoMigrations())
	require.NoError(t, m.SeedInitialData())
	first, err := m.TableCounts()
	require.NoError(t, err)

	require.NoError(t, m.SeedInitialData())
	second, err := m.TableCounts()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(2), second["users"])
	assert.Equal(t, int64(1), second["addresses"])
	assert.Equal(t, int64(3), second["products"])
	assert.Equal(t, int64(0), second["orders"])
}
