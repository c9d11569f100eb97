package analytics

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"fakti/internal/models"
	"fakti/testhelpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AnalyticsServiceTestSuite struct {
	suite.Suite
	invoices *testhelpers.MockInvoiceRepository
	clients  *testhelpers.MockClientRepository
	cache    *testhelpers.MockCacheService
	service  *AnalyticsService
	ownerID  uuid.UUID
	today    time.Time
	ctx      context.Context
}

func (suite *AnalyticsServiceTestSuite) SetupTest() {
	suite.invoices = &testhelpers.MockInvoiceRepository{}
	suite.clients = &testhelpers.MockClientRepository{}
	suite.cache = &testhelpers.MockCacheService{}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	suite.service = NewAnalyticsService(suite.invoices, suite.clients, suite.cache, logger)
	suite.today = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	suite.service.today = func() time.Time { return suite.today }
	suite.ownerID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *AnalyticsServiceTestSuite) TearDownTest() {
	suite.invoices.AssertExpectations(suite.T())
	suite.clients.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func (suite *AnalyticsServiceTestSuite) expectDatabase() {
	suite.invoices.On("Stats", suite.ctx, suite.ownerID, suite.today).Return(&models.DashboardStats{
		TotalInvoices: 4,
		PaidCount:     3,
		Revenue:       decimal.RequireFromString("300.00"),
	}, nil)
	suite.clients.On("Count", suite.ctx, suite.ownerID).Return(2, nil)
	suite.invoices.On("List", suite.ctx, suite.ownerID, models.InvoiceFilter{Limit: recentLimit}).Return([]*models.Invoice{
		{InvoiceNumber: "INV-2024-00004", Status: models.InvoiceStatusSent, DueDate: suite.today.AddDate(0, 0, -1)},
		{InvoiceNumber: "INV-2024-00003", Status: models.InvoiceStatusPaid, DueDate: suite.today.AddDate(0, 0, -1)},
	}, 4, nil)
	suite.clients.On("Recent", suite.ctx, suite.ownerID, recentLimit).Return([]*models.Client{{Name: "Jean"}}, nil)
}

func (suite *AnalyticsServiceTestSuite) TestGetDashboard_ComputesAndCaches() {
	suite.cache.On("GetDashboard", suite.ctx, suite.ownerID).Return(nil, nil)
	suite.expectDatabase()
	suite.cache.On("SetDashboard", suite.ctx, suite.ownerID, mock.AnythingOfType("*models.DashboardStats"), DashboardTTL).Return(nil)

	stats, err := suite.service.GetDashboard(suite.ctx, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(75, stats.PaymentRate)
	suite.Equal(2, stats.TotalClients)
	suite.Require().Len(stats.RecentInvoices, 2)
	suite.True(stats.RecentInvoices[0].IsOverdue)
	suite.False(stats.RecentInvoices[1].IsOverdue)
	suite.Len(stats.RecentClients, 1)
}

func (suite *AnalyticsServiceTestSuite) TestGetDashboard_CacheHit() {
	cached := &models.DashboardStats{TotalInvoices: 9}
	suite.cache.On("GetDashboard", suite.ctx, suite.ownerID).Return(cached, nil)

	stats, err := suite.service.GetDashboard(suite.ctx, suite.ownerID)

	suite.NoError(err)
	suite.Same(cached, stats)
}

func (suite *AnalyticsServiceTestSuite) TestGetDashboard_CacheDownFallsBackToDatabase() {
	suite.cache.On("GetDashboard", suite.ctx, suite.ownerID).Return(nil, errors.New("connection refused"))
	suite.expectDatabase()
	suite.cache.On("SetDashboard", suite.ctx, suite.ownerID, mock.Anything, DashboardTTL).Return(errors.New("connection refused"))

	stats, err := suite.service.GetDashboard(suite.ctx, suite.ownerID)

	suite.NoError(err)
	suite.Equal(4, stats.TotalInvoices)
}

func (suite *AnalyticsServiceTestSuite) TestCalculateDashboard_StatsError() {
	suite.invoices.On("Stats", suite.ctx, suite.ownerID, suite.today).Return(nil, errors.New("timeout"))

	_, err := suite.service.CalculateDashboard(suite.ctx, suite.ownerID)

	suite.Error(err)
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}

func TestPaymentRate(t *testing.T) {
	cases := []struct {
		paid, total, want int
	}{
		{0, 0, 0},
		{3, 4, 75},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PaymentRate(tc.paid, tc.total), "%d/%d", tc.paid, tc.total)
	}
}
