// Package handlers provides HTTP handlers that deliver the frontend environment
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coffeeshop/frontend-environment/internal/environment"
)

type Handler struct {
	env   environment.Environment
	index *environment.Index
}

func NewHandler(env environment.Environment) (*Handler, error) {
	index, err := environment.NewIndex(env)
	if err != nil {
		return nil, fmt.Errorf("failed to index environment: %w", err)
	}

	return &Handler{
		env:   env,
		index: index,
	}, nil
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/environment.json", h.GetEnvironment)
	r.GET("/environment/auth", h.GetAuthConfiguration)
	r.GET("/environment/keys/*key", h.GetValue)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}

func (h *Handler) GetEnvironment(c *gin.Context) {
	c.JSON(http.StatusOK, h.env)
}

func (h *Handler) GetAuthConfiguration(c *gin.Context) {
	c.JSON(http.StatusOK, h.env.Auth)
}

func (h *Handler) GetValue(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	// An empty key lists every key.
	if key == "" {
		c.JSON(http.StatusOK, gin.H{"keys": h.index.Keys()})
		return
	}

	value, ok := h.index.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown environment key %q", key)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}
