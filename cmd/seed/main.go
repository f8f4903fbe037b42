package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"powerbill/internal/config"
	"powerbill/internal/repository/sqlite"
	"powerbill/internal/seed"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	userRepo := sqlite.NewUserRepository(db)
	billRepo := sqlite.NewBillRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := billRepo.Init(ctx); err != nil {
		logger.Fatalf("init bill repository: %v", err)
	}

	if err := seed.Load(ctx, userRepo, billRepo); err != nil {
		logger.Fatalf("seed sample data: %v", err)
	}
	logger.Infof("sample data loaded into %s", cfg.Database.Path)
}
