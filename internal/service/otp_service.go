package service

import (
	"context"

	"assettrack/internal/domain"
)

// OtpStatus is the outcome of checking a presented code against the
// account's outstanding challenge.
type OtpStatus int

const (
	OtpOk OtpStatus = iota
	OtpNoChallenge
	OtpExpired
	OtpMismatch
)

func (s OtpStatus) String() string {
	switch s {
	case OtpOk:
		return "ok"
	case OtpNoChallenge:
		return "no_challenge"
	case OtpExpired:
		return "expired"
	case OtpMismatch:
		return "mismatch"
	}
	return "unknown"
}

type OtpService interface {
	// Issue generates a fresh challenge for the account and persists it,
	// replacing any prior outstanding code. The returned code exists only for
	// delivery; it never appears in an API response.
	Issue(ctx context.Context, user *domain.User, purpose domain.OtpPurpose) (string, error)
	// Validate compares a presented code against the account's slot. It does
	// not consume the challenge; the caller clears the slot on success.
	Validate(user *domain.User, purpose domain.OtpPurpose, presented string) OtpStatus
}
