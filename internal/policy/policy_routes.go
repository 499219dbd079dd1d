package policy

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
	policies := r.Group("/policy")
	policies.Use(middleware.AuthMiddleware())
	{
		policies.GET("", rbac.Authorize(rbacService, "policy", "read"), handler.Get)
		policies.PUT("/weekends", rbac.Authorize(rbacService, "policy", "write"), handler.UpdateWeekends)
		policies.PUT("/reset", rbac.Authorize(rbacService, "policy", "write"), handler.SaveResetPolicy)
		policies.GET("/holidays", rbac.Authorize(rbacService, "policy", "read"), handler.ListHolidays)
		policies.POST("/holidays", rbac.Authorize(rbacService, "policy", "write"), handler.AddHoliday)
		policies.DELETE("/holidays/:id", rbac.Authorize(rbacService, "policy", "write"), handler.DeleteHoliday)
	}
}
