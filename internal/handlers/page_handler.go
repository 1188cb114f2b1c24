package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rebateforge-site/internal/web"
)

type PageHandler struct {
	page        web.Page
	serviceName string
}

func NewPageHandler(endpoint, serviceName string) *PageHandler {
	return &PageHandler{page: web.NewPage(endpoint), serviceName: serviceName}
}

func (h *PageHandler) Landing(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageTemplate, h.page)
}

func (h *PageHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   h.serviceName,
	})
}
