package handlers

import (
	"context"
	"net/http"

	"fakti/internal/common"
	"fakti/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// DashboardProvider computes or serves the cached dashboard of one owner.
type DashboardProvider interface {
	GetDashboard(ctx context.Context, ownerID uuid.UUID) (*models.DashboardStats, error)
}

type DashboardHandlers struct {
	analytics DashboardProvider
	logger    logrus.FieldLogger
}

func NewDashboardHandlers(analytics DashboardProvider, logger logrus.FieldLogger) *DashboardHandlers {
	return &DashboardHandlers{analytics: analytics, logger: logger}
}

// GetDashboard godoc
// @Summary Invoice and client statistics
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Router /v1/dashboard [get]
func (h *DashboardHandlers) GetDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.analytics.GetDashboard(ctx, ownerID)
	if err != nil {
		return respondError(c, h.logger, "dashboard", err)
	}
	return c.JSON(http.StatusOK, stats)
}
