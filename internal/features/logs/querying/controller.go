package logs_querying

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type LogQueryController struct {
	logQueryService *LogQueryService
}

func (c *LogQueryController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/logs/error", c.GetErrorLogs)
	router.GET("/logs/success", c.GetSuccessfulLogs)
	router.GET("/logs/error-distribution", c.GetErrorDistribution)
}

// GetErrorLogs
// @Summary Get error logs
// @Description Returns every stored record whose message starts with ERROR or WARNING, oldest first.
// @Tags logs
// @Produce json
// @Success 200 {array} logs_core.LogRecord
// @Failure 500 {object} map[string]string
// @Router /logs/error [get]
func (c *LogQueryController) GetErrorLogs(ctx *gin.Context) {
	records, err := c.logQueryService.GetErrorLogs(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get error logs"})
		return
	}

	ctx.JSON(http.StatusOK, records)
}

// GetSuccessfulLogs
// @Summary Get successful logs
// @Description Returns every stored record that is not an error, oldest first.
// @Tags logs
// @Produce json
// @Success 200 {array} logs_core.LogRecord
// @Failure 500 {object} map[string]string
// @Router /logs/success [get]
func (c *LogQueryController) GetSuccessfulLogs(ctx *gin.Context) {
	records, err := c.logQueryService.GetSuccessfulLogs(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get successful logs"})
		return
	}

	ctx.JSON(http.StatusOK, records)
}

// GetErrorDistribution
// @Summary Get error distribution
// @Description Percentage of error records per main category, and per sub-category within each category.
// @Description Categories appear in the order they were first seen; an empty object means no errors are stored.
// @Tags logs
// @Produce json
// @Success 200 {object} logs_classification.DistributionReport
// @Failure 500 {object} map[string]string
// @Router /logs/error-distribution [get]
func (c *LogQueryController) GetErrorDistribution(ctx *gin.Context) {
	report, err := c.logQueryService.GetErrorDistribution(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute error distribution"})
		return
	}

	ctx.JSON(http.StatusOK, report)
}
