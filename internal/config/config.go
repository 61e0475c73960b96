// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

// MinJWTSecretLength is the minimum accepted size of the token signing secret in bytes.
const MinJWTSecretLength = 32

// Employee identifier allocation strategies.
const (
	StrategySequence = "sequence"
	StrategyCount    = "count"
)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server     ServerConfig
	Log        LogConfig
	Database   DatabaseConfig
	TLS        TLSConfig
	Auth       AuthConfig
	SMTP       SMTPConfig
	Attendance AttendanceConfig
	Metrics    MetricsConfig
}

type TLSConfig struct {
	CertFile string // Path to certificate file
	KeyFile  string // Path to private key file
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical
	JWTSecret          string
	JWTIssuer          string
	OTPExpiry          time.Duration
	CompanyPrefix      string
	EmployeeIDStrategy string // sequence, count
	BcryptCost         int
	PendingSweep       time.Duration // 0 disables the sweeper
}

// SMTPConfig holds outgoing mail settings. An empty Host selects the log notifier.
type SMTPConfig struct { //nolint:govet // fieldalignment not critical
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

type AttendanceConfig struct {
	Timezone        string
	OfficeStartHour int
	LateGrace       time.Duration
	HalfDayHours    float64
}

type MetricsConfig struct {
	Enabled bool
}

func NewFromCLI(cmd *cli.Command) *Config {
	return &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		TLS: TLSConfig{
			CertFile: cmd.String("tls-cert-file"),
			KeyFile:  cmd.String("tls-key-file"),
		},
		Auth: AuthConfig{
			JWTSecret:          cmd.String("jwt-secret"),
			JWTIssuer:          cmd.String("jwt-issuer"),
			OTPExpiry:          time.Duration(cmd.Int("otp-expiry-minutes")) * time.Minute,
			CompanyPrefix:      cmd.String("company-prefix"),
			EmployeeIDStrategy: strings.ToLower(cmd.String("employee-id-strategy")),
			BcryptCost:         int(cmd.Int("bcrypt-cost")),
			PendingSweep:       cmd.Duration("pending-sweep-interval"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		Attendance: AttendanceConfig{
			Timezone:        cmd.String("timezone"),
			OfficeStartHour: int(cmd.Int("office-start-hour")),
			LateGrace:       time.Duration(cmd.Int("late-grace-minutes")) * time.Minute,
			HalfDayHours:    cmd.Float("half-day-hours"),
		},
		Metrics: MetricsConfig{
			Enabled: cmd.Bool("metrics-enabled"),
		},
	}
}

// Validate reports configuration that the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("jwt-secret must be at least %d bytes", MinJWTSecretLength))
	}
	if c.Auth.OTPExpiry <= 0 {
		errs = append(errs, errors.New("otp-expiry-minutes must be positive"))
	}
	switch c.Auth.EmployeeIDStrategy {
	case StrategySequence, StrategyCount:
	default:
		errs = append(errs, fmt.Errorf("unknown employee-id-strategy %q", c.Auth.EmployeeIDStrategy))
	}
	if c.Auth.PendingSweep < 0 {
		errs = append(errs, errors.New("pending-sweep-interval must not be negative"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone: %w", err))
	}
	if c.Attendance.OfficeStartHour < 0 || c.Attendance.OfficeStartHour > 23 {
		errs = append(errs, errors.New("office-start-hour must be between 0 and 23"))
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("tls-cert-file and tls-key-file must be set together"))
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		errs = append(errs, errors.New("smtp-from is required when smtp-host is set"))
	}

	return errors.Join(errs...)
}

// Location resolves the configured attendance time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Attendance.Timezone == "" || strings.EqualFold(c.Attendance.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Attendance.Timezone)
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/dayflow.db",
			Usage:   "Database DSN (SQLite path or postgres:// URL)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-file",
			Usage:   "Path to TLS certificate file",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_FILE"), toml.TOML("tls.cert_file", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-key-file",
			Usage:   "Path to TLS private key file",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_KEY_FILE"), toml.TOML("tls.key_file", configFile)),
		},
		// Auth flags
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "Secret used to sign session tokens (at least 32 bytes)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_SECRET"), toml.TOML("auth.jwt_secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "jwt-issuer",
			Value:   "dayflow",
			Usage:   "Issuer claim for session tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_ISSUER"), toml.TOML("auth.jwt_issuer", configFile)),
		},
		&cli.IntFlag{
			Name:    "otp-expiry-minutes",
			Value:   10,
			Usage:   "Validity window of registration OTPs in minutes",
			Sources: cli.NewValueSourceChain(cli.EnvVar("OTP_EXPIRY_MINUTES"), toml.TOML("auth.otp_expiry_minutes", configFile)),
		},
		&cli.StringFlag{
			Name:    "company-prefix",
			Value:   "OI",
			Usage:   "Prefix of generated employee identifiers",
			Sources: cli.NewValueSourceChain(cli.EnvVar("COMPANY_PREFIX"), toml.TOML("auth.company_prefix", configFile)),
		},
		&cli.StringFlag{
			Name:    "employee-id-strategy",
			Value:   StrategySequence,
			Usage:   "Employee identifier serial allocation (sequence, count)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("EMPLOYEE_ID_STRATEGY"), toml.TOML("auth.employee_id_strategy", configFile)),
		},
		&cli.IntFlag{
			Name:    "bcrypt-cost",
			Value:   10,
			Usage:   "bcrypt cost factor for password hashes",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BCRYPT_COST"), toml.TOML("auth.bcrypt_cost", configFile)),
		},
		&cli.DurationFlag{
			Name:    "pending-sweep-interval",
			Value:   10 * time.Minute,
			Usage:   "Interval for purging stale pending registrations (0 disables)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PENDING_SWEEP_INTERVAL"), toml.TOML("auth.pending_sweep_interval", configFile)),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP server host (empty logs OTP mails instead of sending)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "Sender address of outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "DayFlow",
			Usage:   "Sender display name of outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require STARTTLS (or implicit TLS on port 465)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
		// Attendance flags
		&cli.StringFlag{
			Name:    "timezone",
			Value:   "Local",
			Usage:   "Time zone that defines the attendance work day",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TIMEZONE"), toml.TOML("attendance.timezone", configFile)),
		},
		&cli.IntFlag{
			Name:    "office-start-hour",
			Value:   9,
			Usage:   "Hour at which the work day starts",
			Sources: cli.NewValueSourceChain(cli.EnvVar("OFFICE_START_HOUR"), toml.TOML("attendance.office_start_hour", configFile)),
		},
		&cli.IntFlag{
			Name:    "late-grace-minutes",
			Value:   15,
			Usage:   "Minutes after office start before a check-in counts as late",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LATE_GRACE_MINUTES"), toml.TOML("attendance.late_grace_minutes", configFile)),
		},
		&cli.FloatFlag{
			Name:    "half-day-hours",
			Value:   4,
			Usage:   "Work hours below which a day counts as half day",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HALF_DAY_HOURS"), toml.TOML("attendance.half_day_hours", configFile)),
		},
		&cli.BoolFlag{
			Name:    "metrics-enabled",
			Usage:   "Expose Prometheus metrics on /metrics",
			Sources: cli.NewValueSourceChain(cli.EnvVar("METRICS_ENABLED"), toml.TOML("metrics.enabled", configFile)),
		},
	}
}
