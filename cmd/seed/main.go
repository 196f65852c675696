package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-catalog-api/config"
	"github.com/oksasatya/go-ddd-catalog-api/internal/application"
	"github.com/oksasatya/go-ddd-catalog-api/internal/container"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/helpers"
)

const (
	demoUsername = "demo"
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
)

var sampleProducts = []map[string]any{
	{"name": "Espresso Beans 1kg", "sku": "COF-ESP-1K", "price": 24.5, "tags": []any{"coffee", "beans"}},
	{"name": "Pour-over Kettle", "sku": "KIT-KTL-01", "price": 39.0, "tags": []any{"equipment"}},
	{"name": "Ceramic Dripper", "sku": "KIT-DRP-02", "price": 18.0, "tags": []any{"equipment", "ceramic"}},
}

var sampleOffers = []map[string]any{
	{"title": "Starter bundle", "skus": []any{"COF-ESP-1K", "KIT-DRP-02"}, "discount_pct": 15},
	{"title": "Free kettle over 100", "min_total": 100, "gift_sku": "KIT-KTL-01"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize dependencies")
	}
	defer c.Close()

	if err := seed(ctx, c, logger); err != nil {
		logger.WithError(err).Fatal("seed failed")
	}
}

func seed(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
	u, err := c.AuthService.Signup(ctx, application.SignupInput{
		Username: demoUsername,
		Email:    demoEmail,
		Password: demoPassword,
	})
	switch {
	case errors.Is(err, application.ErrDuplicateUser):
		logger.WithField("username", demoUsername).Info("demo user already present")
	case err != nil:
		return err
	default:
		logger.WithFields(logrus.Fields{"id": u.ID, "username": u.Username}).Info("seeded user")
	}

	for coll, docs := range map[string][]map[string]any{"products": sampleProducts, "offers": sampleOffers} {
		existing, err := c.DocumentService.List(ctx, coll)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			logger.WithField("collection", coll).Info("collection not empty, skipping")
			continue
		}
		inserted, err := c.DocumentService.Create(ctx, coll, docs)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"collection": coll, "count": len(inserted)}).Info("seeded documents")
	}
	return nil
}
