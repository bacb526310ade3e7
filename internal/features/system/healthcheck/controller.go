package system_healthcheck

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthcheckController struct {
	healthcheckService *HealthcheckService
}

func (c *HealthcheckController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/system/healthcheck", c.CheckHealth)
}

// CheckHealth
// @Summary Check service health
// @Description Checks the database, the cache and free disk space
// @Tags system/health
// @Produce json
// @Success 200 {object} HealthStatusDTO
// @Failure 503 {object} map[string]string
// @Router /system/healthcheck [get]
func (c *HealthcheckController) CheckHealth(ctx *gin.Context) {
	status, err := c.healthcheckService.IsHealthy(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, status)
}
