package logs_ingestion

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"logpulse/internal/config"
	logs_core "logpulse/internal/features/logs/core"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type IngestionController struct {
	logIngestionService *LogIngestionService
	triggerLimiter      *rate.Limiter
}

func (c *IngestionController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/logs/sendRequestsAndSave", c.SendRequestsAndSave)
}

func (c *IngestionController) SetTriggerLimiter(limiter *rate.Limiter) {
	c.triggerLimiter = limiter
}

// SendRequestsAndSave
// @Summary Run an ingestion cycle
// @Description Deletes all stored logs, sends `count` balance-check probes, fetches the log blob and stores the parsed lines.
// @Description The result status is SOURCE_UNAVAILABLE or SOURCE_EMPTY when the log source returned nothing; no records are stored in that case.
// @Tags logs
// @Produce json
// @Param count query int true "Number of balance-check probes (non-negative)"
// @Success 200 {object} IngestLogsResponseDTO
// @Failure 400 {object} map[string]string "Missing, non-integer, negative or too large count"
// @Failure 409 {object} map[string]string "Another instance is running an ingestion cycle"
// @Failure 429 {object} map[string]string "Too many ingestion requests"
// @Failure 500 {object} map[string]string "Record store failure"
// @Failure 503 {object} map[string]string "Service is shutting down"
// @Router /logs/sendRequestsAndSave [post]
func (c *IngestionController) SendRequestsAndSave(ctx *gin.Context) {
	if c.triggerLimiter != nil && !c.triggerLimiter.Allow() {
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many ingestion requests, try again later"})
		return
	}

	if config.IsShouldShutdown() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service is shutting down"})
		return
	}

	countStr, isPresent := ctx.GetQuery("count")
	if !isPresent {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "count query parameter is required"})
		return
	}

	count, err := strconv.Atoi(countStr)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "count must be an integer"})
		return
	}

	result, err := c.logIngestionService.IngestLogs(ctx.Request.Context(), count)
	if err != nil {
		var validationErr *logs_core.ValidationError
		if errors.As(err, &validationErr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "code": validationErr.Code})
			return
		}

		if errors.Is(err, ErrCycleInProgress) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Another ingestion cycle is in progress, try again later"})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest logs"})
		return
	}

	message := fmt.Sprintf("Successfully sent %d requests.", count)
	if result.Joined {
		message = fmt.Sprintf("Joined an in-flight ingestion cycle that sent %d requests.", count)
	}

	ctx.JSON(http.StatusOK, IngestLogsResponseDTO{
		Message: message,
		Result:  result,
	})
}
