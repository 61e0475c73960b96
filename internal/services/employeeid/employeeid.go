// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package employeeid allocates year-scoped employee identifiers such as
// OIJODO20250001.
package employeeid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/repository"
)

// DefaultPrefix is the company prefix used when none is configured.
const DefaultPrefix = "OI"

// Strategy selects how serials are reserved.
type Strategy string

const (
	// StrategySequence reserves serials with an atomic per-year counter.
	StrategySequence Strategy = "sequence"
	// StrategyCount derives the serial from the number of accounts created in
	// the year. Two signups that read the count before either account exists
	// receive the same identifier.
	StrategyCount Strategy = "count"
)

// Store is the persistence needed by Allocator. *repository.Repository satisfies it.
type Store interface {
	CountAccountsCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	NextEmployeeSerial(ctx context.Context, year int, from, to time.Time) (int, error)
}

var _ Store = (*repository.Repository)(nil)

// Allocator builds employee identifiers.
type Allocator struct {
	store    Store
	prefix   string
	strategy Strategy
	loc      *time.Location
}

// NewAllocator creates an Allocator. Year boundaries are taken in loc.
func NewAllocator(store Store, prefix string, strategy Strategy, loc *time.Location) *Allocator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if strategy != StrategyCount {
		strategy = StrategySequence
	}
	if loc == nil {
		loc = time.Local
	}
	return &Allocator{store: store, prefix: strings.ToUpper(prefix), strategy: strategy, loc: loc}
}

// Strategy returns the configured allocation strategy.
func (a *Allocator) Strategy() Strategy {
	return a.strategy
}

// Allocate returns the next identifier for a person joining in year.
func (a *Allocator) Allocate(ctx context.Context, firstName, lastName string, year int) (string, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, a.loc)
	to := from.AddDate(1, 0, 0)

	var serial int
	switch a.strategy {
	case StrategyCount:
		count, err := a.store.CountAccountsCreatedBetween(ctx, from, to)
		if err != nil {
			return "", fmt.Errorf("failed to count accounts: %w", err)
		}
		serial = count + 1
	default:
		next, err := a.store.NextEmployeeSerial(ctx, year, from, to)
		if err != nil {
			return "", fmt.Errorf("failed to reserve serial: %w", err)
		}
		serial = next
	}

	return Format(a.prefix, firstName, lastName, year, serial), nil
}

// Format assembles an identifier. Names shorter than two letters are used as is.
func Format(prefix, firstName, lastName string, year, serial int) string {
	return fmt.Sprintf("%s%s%s%d%04d",
		strings.ToUpper(prefix), initials(firstName), initials(lastName), year, serial)
}

func initials(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}
