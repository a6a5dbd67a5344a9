package service

import (
	"context"

	"assettrack/internal/domain"
)

// Sender is the external notification collaborator that delivers OTP codes.
// Delivery is a fallible remote call; failures are reported, not swallowed.
type Sender interface {
	SendOtp(ctx context.Context, to, code string, purpose domain.OtpPurpose) error
}
