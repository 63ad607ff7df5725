package router

import "github.com/gin-gonic/gin"

// Module is a feature area (auth, users) that owns its routes and registers
// them on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
