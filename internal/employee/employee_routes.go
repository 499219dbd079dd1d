package employee

import (
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	logger *zap.Logger,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	employees.Use(middleware.ContextLogger(logger))
	{
		employees.GET("",
			middleware.RateLimitByEmployee(3, 10),
			rbac.Authorize(rbacService, "employee", "read"),
			handler.GetAll,
		)
		employees.GET("/orgchart",
			middleware.RateLimitByEmployee(1, 5),
			rbac.Authorize(rbacService, "employee", "read"),
			handler.OrgChart,
		)
		employees.GET("/my-team",
			middleware.RateLimitByEmployee(3, 10),
			rbac.Authorize(rbacService, "employee", "read"),
			handler.GetMyTeam,
		)
		employees.GET("/:id",
			middleware.RateLimitByEmployee(3, 10),
			rbac.Authorize(rbacService, "employee", "read"),
			handler.GetByID,
		)
		employees.GET("/:id/balance-summary",
			middleware.RateLimitByEmployee(5, 20),
			rbac.Authorize(rbacService, "employee", "read"),
			handler.BalanceSummary,
		)
		employees.POST("",
			middleware.RateLimitByEmployee(0.5, 2),
			rbac.Authorize(rbacService, "employee", "create"),
			handler.Create,
		)
	}
}
