package main

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"auction-site/internal/repository"
	"auction-site/utils"
)

// openStore builds the configured entity store. The returned func releases it.
func openStore(ctx context.Context, args Args) (repository.AuctionDB, func(), error) {
	if args.Store == StoreMemory {
		repo := repository.NewMemoryRepo()
		prepopulateCategories(ctx, repo)
		return repo, func() {}, nil
	}

	db, err := gorm.Open(postgres.Open(args.DB.DSN()), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	repo := repository.NewGormRepo(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}

	utils.Info("Connected to postgres", map[string]any{"host": args.DB.Host, "database": args.DB.Database})
	return repo, func() { _ = sqlDB.Close() }, nil
}

// prepopulateCategories adds a few starter categories to the in-memory store
func prepopulateCategories(ctx context.Context, repo repository.AuctionDB) {
	for _, name := range []string{"Books", "Electronics", "Fashion", "Home", "Toys"} {
		if _, err := repo.GetOrCreateCategory(ctx, name); err != nil {
			utils.Warn("Failed to seed category", map[string]any{"category": name, "error": err.Error()})
		}
	}
}
