package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-account-service/config"
	"github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	esinfra "github.com/oksasatya/user-account-service/internal/infrastructure/elastic"
	"github.com/oksasatya/user-account-service/internal/infrastructure/persistence"
	pginfra "github.com/oksasatya/user-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-account-service/pkg/apperr"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

// Seeds an admin account through the regular dual-write path so both stores
// end up with the same record. Re-running against an existing email is a no-op.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("failed to init elasticsearch client: %v", err)
	}
	indices := esinfra.Indices{
		Users:       cfg.ESUsersIndex,
		Refresh:     cfg.ESRefreshIndex,
		ResetTokens: cfg.ESResetIndex,
	}
	if err := esinfra.EnsureIndices(ctx, es, indices); err != nil {
		log.Fatalf("failed to ensure elasticsearch indices: %v", err)
	}

	repos := persistence.NewFactory(pool, es, indices)
	svc := application.NewUserService(repos, logger)

	email := "admin@example.com"
	age := 30
	res, err := svc.Create(ctx, application.CreateUserInput{
		Name:     "Administrator",
		Email:    email,
		Password: "ChangeMe123!",
		Role:     valueobject.RoleAdmin.String(),
		Age:      &age,
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			fmt.Printf("admin user already seeded: email=%s\n", email)
			return
		}
		log.Fatalf("failed to seed admin user: %v", err)
	}
	fmt.Printf("seeded admin user: id=%s email=%s\n", res.ID, res.Email)
}
