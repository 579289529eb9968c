package testutil

import (
	"context"
	"time"

	"github.com/trackpredict/backend/config"
	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/pkg/logger"
	"github.com/trackpredict/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env:      "testing",
		LogLevel: logger.SILENCE,
		Settlement: config.SettlementConfigs{
			Interval:      time.Minute,
			MaxConcurrent: 4,
		},
		Nadeo: config.NadeoConfigs{
			CoreURL:               "https://prod.trackmania.core.nadeo.online",
			AuthURL:               "https://prod.trackmania.core.nadeo.online",
			User:                  "test-user",
			Password:              "test-password",
			UserAgent:             "trackpredict-test",
			MinRequestInterval:    0,
			RequestTimeout:        time.Second,
			TokenExpirationMargin: time.Minute,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(cfg.LogLevel))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
