package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarcoTuMD/Template-Admin/internal/auth/credentials"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/provider"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/resolver"
	"github.com/MarcoTuMD/Template-Admin/internal/logger"
)

// writeError shows a provider error to the browser. Known provider
// errors keep their message; anything else is logged and hidden.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, credentials.ErrEmailInUse),
		errors.Is(err, resolver.ErrUnverifiedEmail):
		return http.StatusConflict
	case errors.Is(err, credentials.ErrInvalidCredentials),
		errors.Is(err, provider.ErrExchangeFailed):
		return http.StatusUnauthorized
	case errors.Is(err, credentials.ErrWeakPassword),
		errors.Is(err, credentials.ErrInvalidEmail),
		errors.Is(err, provider.ErrUnknownProvider):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
