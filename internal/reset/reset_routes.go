package reset

import (
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	group := r.Group("/policy/reset")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("/run", rbac.Authorize(rbacService, "policy", "reset"), handler.Run)
	}
}
