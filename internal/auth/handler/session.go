package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// session answers one restore attempt, the way a page load would.
func (h *Handler) session(c *gin.Context) {
	b, err := h.browser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	unmount := b.adapter.Mount(ctx)
	defer unmount()

	snap, err := b.host.AwaitSettled(ctx)
	// the watcher writes flag cookies; stop it before the response
	unmount()
	if err != nil {
		c.AbortWithStatus(http.StatusRequestTimeout)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// events keeps the browser's session mounted for the life of the
// connection and streams every state change as a "session" event.
func (h *Handler) events(c *gin.Context) {
	b, err := h.browser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	changes := b.host.Changes(ctx)

	unmount := b.adapter.Mount(ctx)
	defer unmount()

	snap, err := b.host.AwaitSettled(ctx)
	if err != nil {
		return
	}

	// flag cookies from later events cannot reach an open response
	b.flags.Seal()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("session", snap)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-changes:
			if !ok {
				return
			}
			c.SSEvent("session", snap)
			c.Writer.Flush()
		case <-heartbeat.C:
			h.hosts.Touch(b.clientID)
			_, _ = c.Writer.WriteString(": ping\n\n")
			c.Writer.Flush()
		}
	}
}
