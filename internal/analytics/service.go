// Package analytics computes the per-owner dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"fakti/internal/billing"
	"fakti/internal/caching"
	"fakti/internal/common"
	"fakti/internal/logging"
	"fakti/internal/models"
	"fakti/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DashboardTTL = 5 * time.Minute
	recentLimit  = 5
)

// AnalyticsService builds dashboard figures and caches them per owner.
type AnalyticsService struct {
	invoiceRepo  repositories.InvoiceRepository
	clientRepo   repositories.ClientRepository
	cacheService caching.CacheService
	logger       logrus.FieldLogger
	today        func() time.Time
}

func NewAnalyticsService(invoiceRepo repositories.InvoiceRepository, clientRepo repositories.ClientRepository, cacheService caching.CacheService, logger logrus.FieldLogger) *AnalyticsService {
	return &AnalyticsService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		cacheService: cacheService,
		logger:       logger,
		today:        common.Today,
	}
}

// GetDashboard serves the cached figures when present. Cache failures are
// logged and the figures are computed from the database.
func (a *AnalyticsService) GetDashboard(ctx context.Context, ownerID uuid.UUID) (*models.DashboardStats, error) {
	cached, err := a.cacheService.GetDashboard(ctx, ownerID)
	if err != nil {
		logging.LogError(a.logger, "analytics", "GetDashboard", "cache read", ownerID, err)
	}
	if cached != nil {
		return cached, nil
	}

	stats, err := a.CalculateDashboard(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := a.cacheService.SetDashboard(ctx, ownerID, stats, DashboardTTL); err != nil {
		logging.LogError(a.logger, "analytics", "GetDashboard", "cache write", ownerID, err)
	}
	return stats, nil
}

// CalculateDashboard reads the figures from the database, bypassing the cache.
func (a *AnalyticsService) CalculateDashboard(ctx context.Context, ownerID uuid.UUID) (*models.DashboardStats, error) {
	today := a.today()

	stats, err := a.invoiceRepo.Stats(ctx, ownerID, today)
	if err != nil {
		return nil, err
	}
	stats.PaymentRate = PaymentRate(stats.PaidCount, stats.TotalInvoices)

	if stats.TotalClients, err = a.clientRepo.Count(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	recent, _, err := a.invoiceRepo.List(ctx, ownerID, models.InvoiceFilter{Limit: recentLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent invoices: %w", err)
	}
	for _, inv := range recent {
		inv.IsOverdue = billing.IsOverdue(inv.DueDate, inv.Status, today)
	}
	stats.RecentInvoices = recent

	if stats.RecentClients, err = a.clientRepo.Recent(ctx, ownerID, recentLimit); err != nil {
		return nil, fmt.Errorf("failed to load recent clients: %w", err)
	}

	return stats, nil
}

// PaymentRate is the share of paid invoices as a whole percentage, rounded
// half up. No invoices means a rate of zero.
func PaymentRate(paid, total int) int {
	if total == 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(paid) * 100).
		Div(decimal.NewFromInt(int64(total))).
		Round(0).
		IntPart())
}
