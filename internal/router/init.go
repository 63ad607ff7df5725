package router

import (
	"github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/container"
	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repos := container.GetRepositories()
	jwt := container.GetJWT()

	userSvc := application.NewUserService(repos, logger)
	authSvc := application.NewAuthService(repos, jwt, logger)
	resetSvc := application.NewPasswordResetService(repos, cfg.ResetTokenTTL, logger)

	authHandler := handlers.NewAuthHandler(authSvc, resetSvc, logger, cfg, container.GetRabbitPub())
	userHandler := handlers.NewUserHandler(userSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, jwt))
	r.Add(modules.NewUserModule(userHandler, jwt))
}
