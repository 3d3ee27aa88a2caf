// cmd/passwd/main.go
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Prints a bcrypt hash for seeding or resetting an account by hand. The cost
// comes from BCRYPT_COST.
func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("usage: passwd <password>")
	}
	password := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	pm := auth.NewPasswordManager(cfg.Security.BcryptCost)
	hash, err := pm.HashPassword(password)
	if err != nil {
		logrus.WithError(err).Fatal("password rejected")
	}
	if err := pm.VerifyPassword(password, hash); err != nil {
		logrus.WithError(err).Fatal("hash verification failed")
	}

	fmt.Println(hash)
}
