package notify

import (
	"context"
	"log/slog"

	"assettrack/internal/domain"
)

// Log is the dev sender used when no SMTP host is configured. It logs that a
// delivery happened without ever logging the code itself.
type Log struct{}

func (Log) SendOtp(ctx context.Context, to, code string, purpose domain.OtpPurpose) error {
	slog.Info("otp delivery (dev sender)", "to", to, "purpose", purpose)
	return nil
}
