// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/config"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/database"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/handlers"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/i18n"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/metrics"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/repository"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/attendance"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/credential"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/directory"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/email"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/employeeid"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/identity"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/otp"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/token"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Services bundles the application services behind the HTTP API.
type Services struct {
	DB         handlers.Pinger
	Identity   *identity.Service
	Directory  *directory.Service
	Attendance *attendance.Service
}

// NewServices wires the services from configuration. notifier delivers OTPs.
func NewServices(cfg *config.Config, repo *repository.Repository, notifier identity.Notifier, m *metrics.Metrics) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	ids := identity.NewService(
		repo,
		employeeid.NewAllocator(repo, cfg.Auth.CompanyPrefix, employeeid.Strategy(cfg.Auth.EmployeeIDStrategy), loc),
		notifier,
		credential.NewCodec(cfg.Auth.BcryptCost),
		otp.NewEngine(cfg.Auth.OTPExpiry),
		token.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer, nil),
		identity.WithLocation(loc),
		identity.WithMetrics(m),
	)

	return &Services{
		DB:         repo,
		Identity:   ids,
		Directory:  directory.NewService(repo, time.Now),
		Attendance: attendance.NewService(repo, cfg.Attendance, loc, time.Now, m),
	}, nil
}

// NewNotifier returns the SMTP mailer, or the log notifier when no SMTP host
// is configured.
func NewNotifier(cfg *config.Config) (identity.Notifier, error) {
	if cfg.SMTP.Host == "" {
		slog.Warn("smtp_not_configured", "detail", "OTP codes are written to the log")
		return email.LogNotifier{}, nil
	}
	mailer, err := email.NewService(&cfg.SMTP, cfg.Auth.OTPExpiry)
	if err != nil {
		return nil, err
	}
	return mailer, nil
}

// NewEcho builds the HTTP router with middleware and routes.
func NewEcho(cfg *config.Config, svc *Services, m *metrics.Metrics, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, cfg, logger)
	setupRoutes(e, svc, m)
	return e
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	logger := newLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database", databaseKind(cfg.Database.DSN),
		"employee_id_strategy", cfg.Auth.EmployeeIDStrategy,
	)

	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to init i18n: %w", err)
	}

	// Database, migrations included
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	notifier, err := NewNotifier(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure mail: %w", err)
	}

	m := metrics.New(cfg.Metrics.Enabled)
	svc, err := NewServices(cfg, repository.New(db), notifier, m)
	if err != nil {
		return err
	}

	tlsConfig, err := loadTLSConfig(cfg.TLS)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	e := NewEcho(cfg, svc, m, logger)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go svc.Identity.RunSweeper(sweepCtx, cfg.Auth.PendingSweep)

	return startWithGracefulShutdown(ctx, e, cfg, tlsConfig)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config, tlsConfig *tls.Config) error {
	addr := net.JoinHostPort(cfg.Server.Host, fmt.Sprintf("%d", cfg.Server.Port))
	errChan := make(chan error, 1)

	go func() {
		var err error
		if tlsConfig != nil {
			slog.Info("server running", "addr", addr, "tls", true)
			err = startTLSServer(e, addr, tlsConfig)
		} else {
			slog.Info("server running", "addr", addr, "tls", false)
			err = e.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}

func databaseKind(dsn string) string {
	if database.IsPostgres(dsn) {
		return "postgres"
	}
	return "sqlite"
}
