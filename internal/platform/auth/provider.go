// Package auth provides identity resolution for the referral network: a
// pluggable credential provider, JWT session tokens, and role middleware.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Roles understood by the service.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "hospital_staff"
	RoleDriver = "driver"
)

// Identity is the authenticated principal attached to each request.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Facility string `json:"facility"`
}

// Provider authenticates a username/password pair. Implementations return
// (nil, nil) for wrong credentials and reserve errors for provider failures.
type Provider interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, error)
}

type account struct {
	passwordHash string
	role         string
	facility     string
}

// StaticProvider authenticates against a fixed in-memory account table with
// sha256-hashed passwords.
type StaticProvider struct {
	accounts map[string]account
}

// NewStaticProvider seeds the provider with the network's standing accounts:
// one admin, staff logins for the two referral hospitals, and a driver login.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		accounts: map[string]account{
			"admin": {
				passwordHash: hashPassword("admin123"),
				role:         RoleAdmin,
				facility:     "All Facilities",
			},
			"hospital_staff": {
				passwordHash: hashPassword("staff123"),
				role:         RoleStaff,
				facility:     "Jaramogi Oginga Odinga Teaching & Referral Hospital (JOOTRH)",
			},
			"kisumu_staff": {
				passwordHash: hashPassword("kisumu123"),
				role:         RoleStaff,
				facility:     "Kisumu County Referral Hospital",
			},
			"driver": {
				passwordHash: hashPassword("driver123"),
				role:         RoleDriver,
				facility:     "Ambulance Fleet",
			},
		},
	}
}

// Authenticate checks the username/password pair against the account table.
func (p *StaticProvider) Authenticate(_ context.Context, username, password string) (*Identity, error) {
	acct, ok := p.accounts[username]
	if !ok {
		return nil, nil
	}
	supplied := hashPassword(password)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(acct.passwordHash)) != 1 {
		return nil, nil
	}
	return &Identity{Username: username, Role: acct.role, Facility: acct.facility}, nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
