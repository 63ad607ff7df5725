package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/internal/interface/middleware"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Auth(m.JWT))
	{
		users.GET("/me", m.Handler.Me)
		users.PUT("/me", m.Handler.UpdateMe)

		mod := users.Group("")
		mod.Use(middleware.RequireRole(valueobject.RoleModerator))
		{
			mod.GET("", m.Handler.List)
			mod.GET("/:id", m.Handler.Get)
		}

		admin := users.Group("")
		admin.Use(middleware.RequireRole(valueobject.RoleAdmin))
		{
			admin.POST("", m.Handler.Create)
			admin.PUT("/:id", m.Handler.Update)
			admin.DELETE("/:id", m.Handler.Delete)
		}
	}
}
