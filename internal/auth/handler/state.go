package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarcoTuMD/Template-Admin/internal/utils"
)

const (
	stateCookieName = "__oauth_state"
	stateTTL        = 5 * time.Minute
)

// generateState issues the state for a flow started at providerName. The
// cookie carries the provider so the callback cannot be completed on
// another one.
func (h *Handler) generateState(c *gin.Context, providerName string) (string, error) {
	state, err := utils.RandomString(32)
	if err != nil {
		return "", err
	}

	h.setShortCookie(c, stateCookieName, stateCookieValue(providerName, state), stateTTL)
	return state, nil
}

func stateCookieValue(providerName, state string) string {
	return providerName + ":" + state
}

// validateState compares the callback's state and provider with the ones
// issued at login start. The cookie is single-use.
func (h *Handler) validateState(c *gin.Context, providerName string) bool {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return false
	}

	cookie, err := c.Request.Cookie(stateCookieName)
	h.setShortCookie(c, stateCookieName, "", -1)
	if err != nil {
		return false
	}

	return cookie.Value == stateCookieValue(providerName, stateQuery)
}

// setShortCookie issues an HttpOnly cookie for the federated round trip.
// A negative ttl deletes it.
func (h *Handler) setShortCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
