// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/config"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func validSMTPConfig() *config.SMTPConfig {
	return &config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "testuser",
		Password: "testpass",
		From:     "noreply@example.com",
		FromName: "DayFlow",
		TLS:      true,
	}
}

func TestNewService(t *testing.T) {
	svc, err := email.NewService(validSMTPConfig(), 10*time.Minute)

	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestNewService_MissingHost(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.Host = ""

	_, err := email.NewService(cfg, 10*time.Minute)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP host is required")
}

func TestNewService_MissingFrom(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.From = ""

	_, err := email.NewService(cfg, 10*time.Minute)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP from address is required")
}

func TestBuildOTPMessage(t *testing.T) {
	svc, err := email.NewService(validSMTPConfig(), 10*time.Minute)
	require.NoError(t, err)

	msg, err := svc.BuildOTPMessage(context.Background(), "john@example.com", "123456", "OIJODO20250001", "John")

	require.NoError(t, err)
	assert.Equal(t, []string{"<john@example.com>"}, msg.GetToString())
	assert.NotEmpty(t, msg.GetGenHeader(mail.HeaderSubject))
}

func TestBuildOTPMessage_InvalidRecipient(t *testing.T) {
	svc, err := email.NewService(validSMTPConfig(), 10*time.Minute)
	require.NoError(t, err)

	_, err = svc.BuildOTPMessage(context.Background(), "not an address", "123456", "OIJODO20250001", "John")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting to address")
}

func TestSendOTP_Delivered(t *testing.T) {
	var sent *mail.Msg
	svc, err := email.NewService(validSMTPConfig(), 10*time.Minute,
		email.WithSender(func(_ context.Context, msg *mail.Msg) error {
			sent = msg
			return nil
		}))
	require.NoError(t, err)

	ok := svc.SendOTP(context.Background(), "john@example.com", "123456", "OIJODO20250001", "John")

	assert.True(t, ok)
	require.NotNil(t, sent)
	assert.Equal(t, []string{"<john@example.com>"}, sent.GetToString())
}

func TestSendOTP_SenderFails(t *testing.T) {
	svc, err := email.NewService(validSMTPConfig(), 10*time.Minute,
		email.WithSender(func(context.Context, *mail.Msg) error {
			return errors.New("connection refused")
		}))
	require.NoError(t, err)

	assert.False(t, svc.SendOTP(context.Background(), "john@example.com", "123456", "OIJODO20250001", "John"))
}

func TestSendOTP_BadRecipient(t *testing.T) {
	called := false
	svc, err := email.NewService(validSMTPConfig(), 10*time.Minute,
		email.WithSender(func(context.Context, *mail.Msg) error {
			called = true
			return nil
		}))
	require.NoError(t, err)

	assert.False(t, svc.SendOTP(context.Background(), "", "123456", "OIJODO20250001", "John"))
	assert.False(t, called)
}

func TestLogNotifier(t *testing.T) {
	var n email.LogNotifier

	assert.True(t, n.SendOTP(context.Background(), "john@example.com", "123456", "OIJODO20250001", "John"))
}
