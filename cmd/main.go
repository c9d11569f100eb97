package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"fakti/internal/analytics"
	"fakti/internal/caching"
	"fakti/internal/config"
	"fakti/internal/jobs/background"
	"fakti/internal/logging"
	"fakti/internal/mailer"
	"fakti/internal/repositories"
	"fakti/internal/services"
	"fakti/pkg/database"
)

const version = "1.0.0"

// @title Fakti API
// @version 1.0
// @description Invoicing for small businesses: clients, catalog items, invoices, PDFs and email delivery.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cliApp := &cli.App{
		Name:    "fakti",
		Usage:   "invoicing API server",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run migrations, start the HTTP server and background jobs",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations and exit",
				Action: migrate,
			},
			{
				Name:   "purge-tokens",
				Usage:  "delete expired and used password reset tokens",
				Action: purgeTokens,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds every long-lived dependency the commands share.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
	cache  caching.CacheService
	minio  services.MinioService
	mail   mailer.Mailer

	users     repositories.UserRepository
	resets    repositories.PasswordResetRepository
	clients   repositories.ClientRepository
	items     repositories.ItemRepository
	invoices  repositories.InvoiceRepository
	lineItems repositories.LineItemRepository
}

func bootstrap(ctx context.Context, withStorage bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel)
	if cfg.GeneratedSecret {
		logger.Warn("JWT_SECRET is not set; using a generated secret, tokens will not survive a restart")
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		users:     repositories.NewUserRepository(pool),
		resets:    repositories.NewPasswordResetRepository(pool),
		clients:   repositories.NewClientRepository(pool),
		items:     repositories.NewItemRepository(pool),
		invoices:  repositories.NewInvoiceRepository(pool),
		lineItems: repositories.NewLineItemRepository(pool),
	}

	a.redis = caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	a.cache = caching.NewRedisCacheService(a.redis)

	if !withStorage {
		return a, nil
	}

	a.minio, err = services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize MinIO service: %w", err)
	}
	for _, bucket := range []string{cfg.Minio.InvoiceBucket, cfg.Minio.LogoBucket} {
		if err := a.minio.EnsureBucketExists(ctx, bucket); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to ensure bucket %s: %w", bucket, err)
		}
	}

	a.mail = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logging.LogError(a.logger, "main", "close", "redis", nil, err)
		}
	}
	a.pool.Close()
}

func (a *app) migrate(ctx context.Context) error {
	applied, err := database.Migrate(ctx, a.pool, database.Migrations)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	a.logger.WithField("versions", applied).Info("database migrations applied")
	return nil
}

func migrate(c *cli.Context) error {
	a, err := bootstrap(c.Context, false)
	if err != nil {
		return err
	}
	defer a.close()
	return a.migrate(c.Context)
}

func purgeTokens(c *cli.Context) error {
	a, err := bootstrap(c.Context, false)
	if err != nil {
		return err
	}
	defer a.close()

	scheduler, err := background.NewJobScheduler(redislock.New(a.redis), a.resets, a.logger)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	purged, err := scheduler.PurgeResetTokens(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("purged %d password reset tokens\n", purged)
	return nil
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.migrate(ctx); err != nil {
		return err
	}

	userSvc := services.NewUserService(a.users, a.resets, a.cache, a.minio, a.mail, services.UserServiceConfig{
		LogoBucket:      a.cfg.Minio.LogoBucket,
		PublicBaseURL:   a.cfg.App.PublicBaseURL,
		DefaultLanguage: a.cfg.App.DefaultLanguage,
	}, a.logger)
	authSvc := services.NewAuthService(a.cache, a.cfg.Auth.JWTSecret, a.cfg.Auth.AccessTokenTTL, a.cfg.Auth.RefreshTokenTTL, a.logger)
	clientSvc := services.NewClientService(a.clients, a.invoices, a.cache, a.cfg.App.DefaultPhoneRegion, a.logger)
	itemSvc := services.NewItemService(a.items)
	invoiceSvc := services.NewInvoiceService(a.invoices, a.lineItems, a.clients, a.items, a.users, userSvc, a.cache, a.minio, a.mail,
		services.InvoiceServiceConfig{
			DefaultCurrency: a.cfg.App.DefaultCurrency,
			InvoiceBucket:   a.cfg.Minio.InvoiceBucket,
		}, a.logger)
	analyticsSvc := analytics.NewAnalyticsService(a.invoices, a.clients, a.cache, a.logger)

	e, err := newServer(ctx, a, serverDeps{
		users:     userSvc,
		auth:      authSvc,
		clients:   clientSvc,
		items:     itemSvc,
		invoices:  invoiceSvc,
		dashboard: analyticsSvc,
	})
	if err != nil {
		return err
	}

	scheduler, err := background.NewJobScheduler(redislock.New(a.redis), a.resets, a.logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logging.LogError(a.logger, "main", "serve", "stop scheduler", nil, err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithFields(logrus.Fields{"port": a.cfg.Port, "version": version}).Info("fakti server starting")
		if err := e.Start(fmt.Sprintf(":%d", a.cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

