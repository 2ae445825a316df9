package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	h.passwordFlow(c, http.StatusCreated, func(ctx context.Context, b *browser, req credentialsRequest) error {
		return b.adapter.Register(ctx, req.Email, req.Password)
	})
}

func (h *Handler) login(c *gin.Context) {
	h.passwordFlow(c, http.StatusOK, func(ctx context.Context, b *browser, req credentialsRequest) error {
		return b.adapter.Login(ctx, req.Email, req.Password)
	})
}

func (h *Handler) passwordFlow(
	c *gin.Context,
	status int,
	op func(ctx context.Context, b *browser, req credentialsRequest) error,
) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	b, err := h.browser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := op(c.Request.Context(), b, req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(status, gin.H{
		"user":     b.host.Snapshot().User,
		"redirect": b.nav.to,
	})
}

func (h *Handler) logout(c *gin.Context) {
	b, err := h.browser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := b.adapter.Logout(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": nil})
}
