package app

import (
	"database/sql"

	"go-timeoff/internal/employee"
	"go-timeoff/internal/ledger"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/policy"
	"go-timeoff/internal/rbac"
	"go-timeoff/internal/reset"
	"go-timeoff/internal/timeoff"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(db)
	policyRepo := policy.NewRepository(gormDB)
	timeoffRepo := timeoff.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	employeeService := employee.NewService(db, employeeRepo, ledgerRepo, rdb)
	policyService := policy.NewService(db, policyRepo, outboxRepo)
	timeoffService := timeoff.NewService(db, timeoffRepo, ledgerRepo, employeeRepo, policyRepo, outboxRepo)
	resetService := reset.NewService(db, policyRepo, employeeRepo, ledgerRepo, outboxRepo)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	policyHandler := policy.NewHandler(policyService)
	timeoffHandler := timeoff.NewHandlerWithRedis(timeoffService, rdb)
	resetHandler := reset.NewHandler(resetService)

	// --- Global middleware ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(50), 100))

	logger := zap.L()

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService, logger)
		policy.RegisterRoutes(api, policyHandler, rbacService)
		timeoff.RegisterRoutes(api, timeoffHandler, rbacService, logger, rdb)
		reset.RegisterRoutes(api, resetHandler, rbacService)
	}

	return nil
}
