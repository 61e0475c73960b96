// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package directory manages verified accounts after registration.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/apperr"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/repository"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/validation"
)

var ErrAccountNotFound = apperr.New(apperr.KindNotFound, "account_not_found", "User not found")

// Store is the account persistence used by Service.
type Store interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateAccountProfile(ctx context.Context, id string, upd models.ProfileUpdate, now time.Time) error
	SetAccountActive(ctx context.Context, id string, active bool, now time.Time) error
	DeleteAccount(ctx context.Context, id string) error
}

var _ Store = (*repository.Repository)(nil)

type Service struct {
	store     Store
	validator *validation.Validator
	now       func() time.Time
}

// NewService creates a Service. now defaults to time.Now.
func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, validator: validation.New(), now: now}
}

// List returns all accounts, newest first.
func (s *Service) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Account, error) {
	return notFound(s.store.GetAccountByID(ctx, id))
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return notFound(s.store.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email))))
}

// Update applies a partial profile change and returns the stored account.
func (s *Service) Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.Account, error) {
	if err := s.validator.Validate(upd); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return s.Get(ctx, id)
	}

	if err := s.store.UpdateAccountProfile(ctx, id, upd, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	slog.Info("account_updated", "account_id", id)
	return s.Get(ctx, id)
}

// SetActive activates or deactivates an account. Inactive accounts cannot sign in.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*models.Account, error) {
	if err := s.store.SetAccountActive(ctx, id, active, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to change account state: %w", err)
	}

	slog.Info("account_active_changed", "account_id", id, "active", active)
	return s.Get(ctx, id)
}

// Remove deletes an account and reports whether one existed.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete account: %w", err)
	}

	slog.Info("account_removed", "account_id", id)
	return true, nil
}

func notFound(a *models.Account, err error) (*models.Account, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return a, nil
}
