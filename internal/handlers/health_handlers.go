package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fakti/internal/logging"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Pinger is satisfied by the database pool and the cache service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BucketChecker is the part of the object store the readiness probe needs.
type BucketChecker interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// HealthHandlers serves the liveness and readiness probes.
type HealthHandlers struct {
	db        Pinger
	cache     Pinger
	storage   BucketChecker
	buckets   []string
	version   string
	startedAt time.Time
	logger    logrus.FieldLogger
}

func NewHealthHandlers(db, cache Pinger, storage BucketChecker, buckets []string, version string, logger logrus.FieldLogger) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		storage:   storage,
		buckets:   buckets,
		version:   version,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

// LivenessCheck godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, h.status("alive"))
}

// ReadinessCheck reports 503 unless Postgres, Redis and every bucket are
// reachable.
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus
// @Router /health/ready [get]
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	health := h.status("ready")
	health.Services = map[string]string{
		"database": h.check(ctx, "database", h.db.Ping),
		"redis":    h.check(ctx, "redis", h.cache.Ping),
		"storage":  h.check(ctx, "storage", h.checkStorage),
	}

	for _, state := range health.Services {
		if state != "healthy" {
			health.Status = "not_ready"
			return c.JSON(http.StatusServiceUnavailable, health)
		}
	}
	return c.JSON(http.StatusOK, health)
}

func (h *HealthHandlers) status(state string) *HealthStatus {
	return &HealthStatus{
		Status:    state,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Version:   h.version,
	}
}

func (h *HealthHandlers) check(ctx context.Context, name string, probe func(context.Context) error) string {
	if err := probe(ctx); err != nil {
		logging.LogError(h.logger, "handlers", "ReadinessCheck", name, nil, err)
		return "unhealthy"
	}
	return "healthy"
}

func (h *HealthHandlers) checkStorage(ctx context.Context) error {
	for _, bucket := range h.buckets {
		exists, err := h.storage.BucketExists(ctx, bucket)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("bucket %s does not exist", bucket)
		}
	}
	return nil
}
