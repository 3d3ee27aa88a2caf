// internal/interfaces/http/routes/services.go
package routes

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Services holds the domain services shared by all handlers
type Services struct {
	JWT      *auth.JWTManager
	Users    *user.Service
	Products *product.Service
	Carts    *cart.Service
	Orders   *order.Service
	Wishlist *wishlist.Service
	Checkout *checkout.Service
}

// NewServices wires the domain services. Checkout navigation is returned to
// the client, so the orchestrator schedules it immediately.
func NewServices(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, publisher order.EventPublisher, logger *logrus.Logger) *Services {
	rule := pricing.NewRule(cfg.Checkout)
	jwtManager := auth.NewJWTManager(cfg)

	users := user.NewService(db, logger, auth.NewPasswordManager(cfg.Security.BcryptCost), jwtManager, cfg.JWT.RefreshTokenRotation)
	products := product.NewService(db)
	carts := cart.NewService(
		cart.NewGormRepository(db),
		cart.NewRedisRepository(redisClient, cfg.Session.GuestCartTTL),
		products,
		rule,
		logger,
	)
	orders := order.NewService(
		db,
		order.NewIdempotencyStore(redisClient, cfg.Checkout.IdempotencyTTL, 2*cfg.Checkout.SubmitTimeout),
		publisher,
		rule,
		cfg.Checkout.Currency,
		logger,
	)

	validator := checkout.NewFormValidator()
	orchestrator := checkout.NewOrchestrator(carts, orders, validator, rule, checkout.OrchestratorConfig{
		RedirectDelay: cfg.Checkout.RedirectDelay,
		SubmitTimeout: cfg.Checkout.SubmitTimeout,
		Scheduler:     checkout.Immediate,
	}, logger)

	return &Services{
		JWT:      jwtManager,
		Users:    users,
		Products: products,
		Carts:    carts,
		Orders:   orders,
		Wishlist: wishlist.NewService(db, products, carts, logger),
		Checkout: checkout.NewService(carts, users, validator, orchestrator, rule, logger),
	}
}
