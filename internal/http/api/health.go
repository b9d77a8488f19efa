package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// HealthModule serves GET /healthz. Any failing check turns the answer into
// a 503 naming the failed dependency.
func HealthModule(checks ...HealthCheck) Module {
	return ModuleFunc(func(c *Controller) {
		c.Group.GET("/healthz", func(ctx *gin.Context) {
			cctx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
			defer cancel()

			status := gin.H{}
			code := http.StatusOK
			for _, hc := range checks {
				if err := hc.Check(cctx); err != nil {
					status[hc.Name] = "down"
					code = http.StatusServiceUnavailable
					continue
				}
				status[hc.Name] = "ok"
			}
			ctx.JSON(code, gin.H{"status": http.StatusText(code), "checks": status})
		})
	})
}
