package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blupr/internal/engine"
	"blupr/internal/service"
)

// statusFor traduce errores de servicio y motor a codigos HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidScore),
		errors.Is(err, engine.ErrUnknownQuestion),
		errors.Is(err, service.ErrInvalidIdentity):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrSurveyComplete),
		errors.Is(err, engine.ErrOnboardingIncomplete),
		errors.Is(err, service.ErrNotComplete):
		return http.StatusConflict
	case errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrBatchQuotaReached):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
		if status == http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": msg})
			return
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
