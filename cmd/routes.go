package main

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc/v2"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "fakti/docs"
	"fakti/internal/common"
	"fakti/internal/handlers"
	"fakti/internal/logging"
	"fakti/internal/middleware"
	"fakti/internal/services"
)

type serverDeps struct {
	users     services.UserService
	auth      services.AuthService
	clients   services.ClientService
	items     services.ItemService
	invoices  services.InvoiceService
	dashboard handlers.DashboardProvider
}

func newServer(ctx context.Context, a *app, deps serverDeps) (*echo.Echo, error) {
	var jwks *keyfunc.JWKS
	if a.cfg.Auth.JWKSURL != "" {
		var err error
		jwks, err = middleware.LoadJWKS(ctx, a.cfg.Auth.JWKSURL, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load JWKS: %w", err)
		}
	}

	authHandlers := handlers.NewAuthHandlers(deps.users, deps.auth, a.logger)
	userHandlers := handlers.NewUserHandlers(deps.users, a.logger)
	clientHandlers := handlers.NewClientHandlers(deps.clients, a.logger)
	itemHandlers := handlers.NewItemHandlers(deps.items, a.logger)
	invoiceHandlers := handlers.NewInvoiceHandlers(deps.invoices, a.logger)
	dashboardHandlers := handlers.NewDashboardHandlers(deps.dashboard, a.logger)
	healthHandlers := handlers.NewHealthHandlers(a.pool, a.cache, a.minio,
		[]string{a.cfg.Minio.InvoiceBucket, a.cfg.Minio.LogoBucket}, version, a.logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = common.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(a.logger)

	// Global middleware
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.Language(a.cfg.App.DefaultLanguage))
	e.Use(logging.RequestLogger(a.logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.BodyLimit("4M"))
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	e.GET("/health", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/password-reset", authHandlers.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authHandlers.ConfirmPasswordReset)

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(deps.auth, a.cfg.Auth.JWTSecret, jwks, a.logger)))

	protected.POST("/auth/logout", authHandlers.Logout)

	protected.GET("/me", userHandlers.Me)
	protected.PUT("/me", userHandlers.UpdateMe)
	protected.DELETE("/me", userHandlers.DeleteAccount)
	protected.POST("/me/password", authHandlers.ChangePassword)
	protected.GET("/me/logo", userHandlers.GetLogo)
	protected.PUT("/me/logo", userHandlers.UploadLogo)

	protected.GET("/clients", clientHandlers.ListClients)
	protected.POST("/clients", clientHandlers.CreateClient)
	protected.GET("/clients/:id", clientHandlers.GetClient)
	protected.PUT("/clients/:id", clientHandlers.UpdateClient)
	protected.DELETE("/clients/:id", clientHandlers.DeleteClient)

	protected.GET("/items", itemHandlers.ListItems)
	protected.POST("/items", itemHandlers.CreateItem)
	protected.GET("/items/:id", itemHandlers.GetItem)
	protected.GET("/items/:id/detail", itemHandlers.GetItemDetail)
	protected.PUT("/items/:id", itemHandlers.UpdateItem)
	protected.DELETE("/items/:id", itemHandlers.DeleteItem)

	protected.GET("/invoices", invoiceHandlers.ListInvoices)
	protected.POST("/invoices", invoiceHandlers.CreateInvoice)
	protected.GET("/invoices/defaults", invoiceHandlers.Defaults)
	protected.GET("/invoices/export", invoiceHandlers.Export)
	protected.GET("/invoices/:id", invoiceHandlers.GetInvoice)
	protected.PUT("/invoices/:id", invoiceHandlers.UpdateInvoice)
	protected.PATCH("/invoices/:id/status", invoiceHandlers.UpdateStatus)
	protected.DELETE("/invoices/:id", invoiceHandlers.DeleteInvoice)
	protected.GET("/invoices/:id/pdf", invoiceHandlers.DownloadPDF)
	protected.POST("/invoices/:id/pdf", invoiceHandlers.StorePDF)
	protected.GET("/invoices/:id/email-defaults", invoiceHandlers.EmailDefaults)
	protected.POST("/invoices/:id/send", invoiceHandlers.SendInvoice)

	protected.GET("/dashboard", dashboardHandlers.GetDashboard)

	return e, nil
}
