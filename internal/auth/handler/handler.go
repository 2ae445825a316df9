package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarcoTuMD/Template-Admin/internal/auth/provider"
	"github.com/MarcoTuMD/Template-Admin/internal/logger"
	"github.com/MarcoTuMD/Template-Admin/internal/session"
	"github.com/MarcoTuMD/Template-Admin/internal/sessionadapter"
	"github.com/MarcoTuMD/Template-Admin/internal/state"
)

// BindFunc returns the identity provider scoped to one browser client.
type BindFunc func(clientID string) sessionadapter.IdentityProvider

type Handler struct {
	bind      BindFunc
	providers *provider.Registry
	hosts     *sessionadapter.Registry
	cookies   session.CookieOptions
	home      string
	heartbeat time.Duration
}

func NewHandler(
	bind BindFunc,
	registry *provider.Registry,
	hosts *sessionadapter.Registry,
	cookies session.CookieOptions,
	home string,
) *Handler {
	if home == "" {
		home = "/"
	}
	return &Handler{
		bind:      bind,
		providers: registry,
		hosts:     hosts,
		cookies:   cookies,
		home:      home,
		heartbeat: 15 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/register", h.register)
	r.POST("/auth/login", h.login)
	r.GET("/oauth/login/:provider", h.federatedLogin)
	r.GET("/oauth/callback/:provider", h.callback)
	r.POST("/auth/logout", h.logout)
	r.GET("/auth/session", h.session)
	r.GET("/auth/session/events", h.events)

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

// browser is the session adapter assembled for one request.
type browser struct {
	clientID string
	host     *state.Host
	flags    *session.CookieFlags
	nav      *redirect
	adapter  *sessionadapter.Adapter
}

func (h *Handler) browser(c *gin.Context) (*browser, error) {
	clientID, err := session.EnsureClientID(c.Writer, c.Request, h.cookies)
	if err != nil {
		return nil, err
	}

	b := &browser{
		clientID: clientID,
		host:     h.hosts.Host(clientID),
		flags:    session.NewCookieFlags(c.Writer, c.Request, h.cookies),
		nav:      &redirect{},
	}
	b.adapter = sessionadapter.New(h.bind(clientID), b.flags, b.host, b.nav, h.home)
	return b, nil
}

// redirect records where the adapter wants the browser to go; the
// handler turns it into a JSON hint or an HTTP redirect.
type redirect struct {
	to string
}

func (r *redirect) Navigate(path string) {
	r.to = path
}
