package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-timeoff/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitRouter(employeeID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/limited",
		func(c *gin.Context) {
			if employeeID != "" {
				c.Set("employee_id", employeeID)
			}
		},
		middleware.RateLimitByEmployee(1, 1),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return router
}

func TestRateLimitByEmployee_BlocksBurstOverLimit(t *testing.T) {
	router := setupRateLimitRouter("emp-1")

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/limited", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/limited", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRateLimitByEmployee_UnauthenticatedFallsThrough(t *testing.T) {
	router := setupRateLimitRouter("")

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
