// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"
)

// NextEmployeeSerial atomically increments and returns the serial for year.
// The first call for a year seeds the counter from the accounts created in
// [from, to), so serials continue after rows written before the counter existed.
func (r *Repository) NextEmployeeSerial(ctx context.Context, year int, from, to time.Time) (int, error) {
	var serial int
	err := r.get(ctx, &serial,
		`INSERT INTO employee_sequences (year, last_serial)
		VALUES (?, (SELECT COUNT(*) FROM accounts WHERE created_at >= ? AND created_at < ?) + 1)
		ON CONFLICT (year) DO UPDATE SET last_serial = employee_sequences.last_serial + 1
		RETURNING last_serial`,
		year, utc(from), utc(to))
	return serial, err
}
