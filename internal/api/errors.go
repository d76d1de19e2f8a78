package api

import (
	"errors"
	"net/http"

	"study_garden/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP responses.
func writeError(c *gin.Context, log *zap.Logger, msg string, err error) {
	var (
		verr  *service.ValidationError
		funds *service.InsufficientFundsError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &funds):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"result":  "rejected",
			"error":   "insufficient points",
			"balance": funds.Balance,
			"cost":    funds.Cost,
		})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, service.ErrTaskAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
	case errors.Is(err, service.ErrCatalogExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": "no rewards available"})
	default:
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
