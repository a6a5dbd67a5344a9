package service

import (
	"context"

	"assettrack/internal/domain"
)

// Claims is the decoded, verified content of a session token.
type Claims struct {
	UserID domain.UserID
	Email  string
}

type TokenService interface {
	// Issue mints a signed session token for a verified account.
	Issue(ctx context.Context, user *domain.User) (token string, expiresIn int64, err error)
	// Verify checks signature and expiry. Pure function of token and key;
	// never consults the store.
	Verify(token string) (*Claims, error)
}
