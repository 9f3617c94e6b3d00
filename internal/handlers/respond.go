package handlers

import (
	"errors"
	"net/http"

	"task-management-api/internal/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// writeError maps service errors onto HTTP statuses. Unexpected errors are
// logged and answered with a generic message.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error."

	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrAuth):
		status, msg = http.StatusUnauthorized, err.Error()
	default:
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
	}

	c.JSON(status, gin.H{"status": false, "message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": msg})
}

func respondOK(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"status": true, "message": msg})
}
