package timeoff

import (
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	logger *zap.Logger,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	requests := r.Group("/timeoff")
	requests.Use(middleware.AuthMiddleware())
	requests.Use(middleware.ContextLogger(logger))
	{
		requests.GET("",
			middleware.RateLimitByEmployee(3, 10),
			rbac.Authorize(rbacService, "timeoff", "read_all"),
			handler.ListCompany,
		)
		requests.GET("/mine",
			middleware.RateLimitByEmployee(3, 10),
			rbac.Authorize(rbacService, "timeoff", "read"),
			handler.ListMine,
		)
		requests.GET("/:id",
			middleware.RateLimitByEmployee(3, 10),
			rbac.Authorize(rbacService, "timeoff", "read"),
			handler.GetByID,
		)
		requests.GET("/:id/history",
			middleware.RateLimitByEmployee(3, 10),
			rbac.Authorize(rbacService, "timeoff", "read"),
			handler.History,
		)

		if redisClient != nil {
			requests.POST("",
				middleware.Idempotency(redisClient),
				middleware.RateLimitByEmployee(0.5, 2),
				rbac.Authorize(rbacService, "timeoff", "create"),
				handler.Create,
			)
		} else {
			requests.POST("",
				middleware.RateLimitByEmployee(0.5, 2),
				rbac.Authorize(rbacService, "timeoff", "create"),
				handler.Create,
			)
		}
		requests.POST("/:id/approve",
			middleware.RateLimitByEmployee(1, 5),
			rbac.Authorize(rbacService, "timeoff", "approve"),
			handler.Approve,
		)
		requests.POST("/:id/deny",
			middleware.RateLimitByEmployee(1, 5),
			rbac.Authorize(rbacService, "timeoff", "approve"),
			handler.Deny,
		)
		requests.POST("/:id/withdraw",
			middleware.RateLimitByEmployee(1, 5),
			rbac.Authorize(rbacService, "timeoff", "withdraw"),
			handler.Withdraw,
		)
		requests.POST("/:id/reschedule",
			middleware.RateLimitByEmployee(0.5, 2),
			rbac.Authorize(rbacService, "timeoff", "reschedule"),
			handler.Reschedule,
		)
	}
}
