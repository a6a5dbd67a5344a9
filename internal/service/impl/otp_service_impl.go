package impl

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"assettrack/internal/domain"
	"assettrack/internal/observability/metrics"
	"assettrack/internal/service"
)

type otpStore interface {
	SetOtp(ctx context.Context, userID domain.UserID, code string, purpose domain.OtpPurpose, expiresAt time.Time) error
}

type OtpServiceImpl struct {
	store otpStore
	ttl   time.Duration
	now   func() time.Time
}

func NewOtpService(store otpStore, ttl time.Duration) *OtpServiceImpl {
	return &OtpServiceImpl{store: store, ttl: ttl, now: time.Now}
}

// Issue generates a uniform random six-digit code (100000-999999, a leading
// zero is impossible), persists it with its expiry, and returns it for
// delivery. Any prior outstanding challenge for the account is overwritten.
func (o *OtpServiceImpl) Issue(ctx context.Context, user *domain.User, purpose domain.OtpPurpose) (string, error) {
	result := "success"
	defer func() {
		metrics.OtpIssuedTotal.WithLabelValues(string(purpose), result).Inc()
	}()

	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		result = "failure"
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	expiresAt := o.now().UTC().Add(o.ttl)
	if err := o.store.SetOtp(ctx, user.ID, code, purpose, expiresAt); err != nil {
		result = "failure"
		return "", err
	}
	return code, nil
}

// Validate checks the presented code against the account's slot. Expiry and
// equality are both enforced; an expired code is rejected even when it
// matches. The slot is left untouched: register and login apply different
// post-success actions, so consumption is the caller's job.
func (o *OtpServiceImpl) Validate(user *domain.User, purpose domain.OtpPurpose, presented string) service.OtpStatus {
	status := o.validate(user, purpose, presented)
	metrics.OtpValidationsTotal.WithLabelValues(string(purpose), status.String()).Inc()
	return status
}

func (o *OtpServiceImpl) validate(user *domain.User, purpose domain.OtpPurpose, presented string) service.OtpStatus {
	if !user.HasOtp() {
		return service.OtpNoChallenge
	}
	if o.now().UTC().After(*user.OtpExpiresAt) {
		return service.OtpExpired
	}
	if user.OtpPurpose == nil || domain.OtpPurpose(*user.OtpPurpose) != purpose {
		return service.OtpMismatch
	}
	if *user.OtpCode != presented {
		return service.OtpMismatch
	}
	return service.OtpOk
}
