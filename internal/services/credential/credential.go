// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package credential hashes and verifies account passwords with bcrypt.
package credential

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxSecretLength is the longest secret bcrypt accepts, in bytes.
const MaxSecretLength = 72

var (
	ErrSecretTooLong = errors.New("password exceeds 72 bytes")
	ErrEmptySecret   = errors.New("password is empty")
)

// Codec hashes secrets at a fixed bcrypt cost.
type Codec struct {
	cost      int
	dummyHash []byte
}

// NewCodec creates a Codec. Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewCodec(cost int) *Codec {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// dummyHash is compared for unknown accounts so both paths cost one bcrypt run
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	return &Codec{cost: cost, dummyHash: dummy}
}

// Cost returns the configured bcrypt cost.
func (c *Codec) Cost() int {
	return c.cost
}

// Hash returns the bcrypt digest of secret.
func (c *Codec) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if len(secret) > MaxSecretLength {
		return "", ErrSecretTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. Malformed digests never match.
func (c *Codec) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// VerifyDummy spends the same work as Verify without a real digest.
func (c *Codec) VerifyDummy(secret string) {
	_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(secret))
}
