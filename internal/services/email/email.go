// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/config"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/i18n"
	"github.com/a-h/templ"
	"github.com/wneessen/go-mail"
)

// SendTimeout bounds a single SMTP dial and send.
const SendTimeout = 15 * time.Second

// Sender delivers a composed message.
type Sender func(ctx context.Context, msg *mail.Msg) error

// Service delivers OTP mails over SMTP.
type Service struct {
	cfg       *config.SMTPConfig
	otpWindow time.Duration
	sender    Sender
}

// Option configures a Service.
type Option func(*Service)

// WithSender replaces SMTP delivery, mainly for tests.
func WithSender(sender Sender) Option {
	return func(s *Service) { s.sender = sender }
}

// NewService creates a new email service. otpWindow is shown in the mail text.
func NewService(cfg *config.SMTPConfig, otpWindow time.Duration, opts ...Option) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	s := &Service{cfg: cfg, otpWindow: otpWindow}
	s.sender = s.dialAndSend
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SendOTP mails the verification code and reports whether the server accepted it.
func (s *Service) SendOTP(ctx context.Context, to, otp, employeeID, firstName string) bool {
	msg, err := s.BuildOTPMessage(ctx, to, otp, employeeID, firstName)
	if err != nil {
		slog.Error("otp_mail_build_failed", "to", to, "error", err)
		return false
	}

	if err := s.sender(ctx, msg); err != nil {
		slog.Error("otp_mail_send_failed", "to", to, "error", err)
		return false
	}

	slog.Info("otp_mail_sent", "to", to, "employee_id", employeeID)
	return true
}

// BuildOTPMessage composes the plain text and HTML OTP mail.
func (s *Service) BuildOTPMessage(ctx context.Context, to, otp, employeeID, firstName string) (*mail.Msg, error) {
	content := newOTPContent(ctx, otp, employeeID, firstName, s.otpWindow)

	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(content.Subject)
	msg.SetBodyString(mail.TypeTextPlain, content.Text())

	html, err := renderHTML(ctx, otpHTML(content))
	if err != nil {
		return nil, fmt.Errorf("rendering html body: %w", err)
	}
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	return msg, nil
}

func (s *Service) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	// Build client options
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(SendTimeout),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	// Add authentication if credentials are provided
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// otpContent holds the localized parts of the OTP mail.
type otpContent struct {
	Subject  string
	Greeting string
	Intro    string
	Code     string
	Expiry   string
	Ignore   string
}

func newOTPContent(ctx context.Context, otp, employeeID, firstName string, window time.Duration) otpContent {
	return otpContent{
		Subject:  i18n.T(ctx, "mail_otp_subject"),
		Greeting: i18n.TData(ctx, "mail_otp_greeting", map[string]any{"FirstName": firstName}),
		Intro:    i18n.TData(ctx, "mail_otp_intro", map[string]any{"EmployeeID": employeeID}),
		Code:     otp,
		Expiry:   i18n.TData(ctx, "mail_otp_expiry", map[string]any{"Minutes": int(window.Minutes())}),
		Ignore:   i18n.T(ctx, "mail_otp_ignore"),
	}
}

// Text renders the plain text body.
func (c otpContent) Text() string {
	return c.Greeting + "\n\n" + c.Intro + "\n\n    " + c.Code + "\n\n" + c.Expiry + "\n\n" + c.Ignore + "\n"
}

func otpHTML(c otpContent) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html><body style="font-family:sans-serif;color:#1f2933">`+
			`<p>`+templ.EscapeString(c.Greeting)+`</p>`+
			`<p>`+templ.EscapeString(c.Intro)+`</p>`+
			`<p style="font-size:28px;font-weight:bold;letter-spacing:6px">`+templ.EscapeString(c.Code)+`</p>`+
			`<p>`+templ.EscapeString(c.Expiry)+`</p>`+
			`<p style="color:#7b8794;font-size:12px">`+templ.EscapeString(c.Ignore)+`</p>`+
			`</body></html>`)
		return err
	})
}

func renderHTML(ctx context.Context, component templ.Component) (string, error) {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(ctx, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LogNotifier writes OTPs to the log instead of mailing them. It is used
// when no SMTP host is configured.
type LogNotifier struct{}

// SendOTP logs the code and always reports success.
func (LogNotifier) SendOTP(_ context.Context, to, otp, employeeID, firstName string) bool {
	slog.Warn("otp_mail_not_configured", "to", to, "employee_id", employeeID, "first_name", firstName, "otp", otp)
	return true
}
