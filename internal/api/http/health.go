package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueueInspector reports the number of pending build events.
type QueueInspector interface {
	Len(ctx context.Context) (int64, error)
}

type HealthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Service      string    `json:"service"`
	Version      string    `json:"version"`
	DB           string    `json:"db,omitempty"`
	QueueDepth   int64     `json:"queue_depth"`
	QueueHealthy bool      `json:"queue_healthy"`
}

type HealthHandler struct {
	serviceName string
	version     string
	db          *pgxpool.Pool
	queue       QueueInspector
}

func NewHealthHandler(serviceName, version string, db *pgxpool.Pool, queue QueueInspector) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		queue:       queue,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.db.Ping(pingCtx); err != nil {
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
	}

	var depth int64
	queueHealthy := false
	if h.queue != nil {
		if n, err := h.queue.Len(c.Request.Context()); err == nil {
			depth = n
			queueHealthy = true
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().UTC(),
		Service:      h.serviceName,
		Version:      h.version,
		DB:           dbStatus,
		QueueDepth:   depth,
		QueueHealthy: queueHealthy,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
