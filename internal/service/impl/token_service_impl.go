package impl

import (
	"context"
	"errors"
	"time"

	"assettrack/internal/domain"
	"assettrack/internal/observability/metrics"
	"assettrack/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====== Config ======

type TokenConfig struct {
	Issuer     string
	AccessTTL  time.Duration // e.g. 24h
	SigningKey []byte        // HS256 secret; validated non-empty at construction
}

// ====== Claims ======

type AccessClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ====== Service ======

type TokenServiceImpl struct {
	cfg TokenConfig
}

var errNoSigningKey = errors.New("token service: empty signing key")

// NewTokenServiceHS256 builds a stateless HS256 token service. An empty key
// is a configuration defect, never replaced with a default.
func NewTokenServiceHS256(cfg TokenConfig) (*TokenServiceImpl, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errNoSigningKey
	}
	return &TokenServiceImpl{cfg: cfg}, nil
}

func (t *TokenServiceImpl) Issue(ctx context.Context, user *domain.User) (string, int64, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("issue", result).Inc()
	}()

	now := time.Now().UTC()
	claims := AccessClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.cfg.SigningKey)
	if err != nil {
		result = "failure"
		return "", 0, err
	}
	return signed, int64(t.cfg.AccessTTL.Seconds()), nil
}

// Verify validates signature, expiry and issuer. It needs nothing beyond the
// token and the key.
func (t *TokenServiceImpl) Verify(tokenStr string) (*service.Claims, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Issuer != t.cfg.Issuer {
		return nil, domain.ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return &service.Claims{UserID: userID, Email: claims.Email}, nil
}
