package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarcoTuMD/Template-Admin/internal/auth"
	"github.com/MarcoTuMD/Template-Admin/internal/logger"
	"github.com/MarcoTuMD/Template-Admin/internal/session"
)

// federatedLogin sends the browser to the provider's consent page.
func (h *Handler) federatedLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	// the callback must land on the same client
	if _, err := session.EnsureClientID(c.Writer, c.Request, h.cookies); err != nil {
		writeError(c, err)
		return
	}

	state, err := h.generateState(c, providerName)
	if err != nil {
		writeError(c, err)
		return
	}
	_, codeChallenge, err := h.generatePKCE(c)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, codeChallenge))
}

func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	if !h.validateState(c, providerName) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	// consent denied or cancelled at the provider
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, h.home)
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := h.takePKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	b, err := h.browser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	err = b.adapter.LoginFederated(c.Request.Context(), auth.FederatedGrant{
		Provider:     providerName,
		Code:         code,
		CodeVerifier: codeVerifier,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	to := b.nav.to
	if to == "" {
		to = h.home
	}
	c.Redirect(http.StatusFound, to)
}
