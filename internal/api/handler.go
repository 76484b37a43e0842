package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"catalog-bot/internal/service"
	"catalog-bot/internal/store"
	"catalog-bot/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FileLinker resolves a Telegram file id to a downloadable URL.
type FileLinker interface {
	FileLink(ctx context.Context, fileID string) (string, error)
}

// Handler contains HTTP handlers
type Handler struct {
	orderService *service.OrderService
	catalogs     store.CatalogStore
	catalogCount int
	files        FileLinker
}

// NewHandler creates a new HTTP handler
func NewHandler(orderService *service.OrderService, catalogs store.CatalogStore, catalogCount int, files FileLinker) *Handler {
	return &Handler{
		orderService: orderService,
		catalogs:     catalogs,
		catalogCount: catalogCount,
		files:        files,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/tg-image/:fileID", h.imageRedirect)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/catalogs/:id", h.getCatalog)
		v1.POST("/orders", h.submitOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getCatalog serves one catalog document to the storefront
func (h *Handler) getCatalog(c *gin.Context) {
	idStr := c.Param("id")
	n, err := strconv.Atoi(idStr)
	if err != nil || n < 1 || n > h.catalogCount {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid catalog number",
		})
		return
	}

	catalog, _, err := h.catalogs.Load(c.Request.Context(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load catalog",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, catalog)
}

// submitOrder handles order intake from the storefront
func (h *Handler) submitOrder(c *gin.Context) {
	var req service.SubmitOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.orderService.SubmitOrder(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyOrder) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Order has no items",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to submit order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// imageRedirect proxies product photos by redirecting to the file URL
func (h *Handler) imageRedirect(c *gin.Context) {
	fileID := c.Param("fileID")

	url, err := h.files.FileLink(c.Request.Context(), fileID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Image not found",
		})
		return
	}

	c.Redirect(http.StatusFound, url)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
