package impl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"assettrack/internal/domain"
	"assettrack/internal/dto"
	"assettrack/internal/netutil"
	"assettrack/internal/observability/metrics"
	"assettrack/internal/observability/middleware"
	"assettrack/internal/service"
	"assettrack/internal/store"

	"github.com/google/uuid"
)

// AuthServiceImpl drives the account state machine:
// Unregistered -> PendingVerification -> Verified, with an optional
// AwaitingLoginOtp detour on two-step login.
type AuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	TokenService    service.TokenService
	OtpService      service.OtpService
	Sender          service.Sender
	LoginOtp        bool

	// Hashed once at construction. Login verifies against it when the account
	// does not exist so both failure paths cost the same.
	decoy *domain.User
}

func NewAuthServiceImpl(st *store.Store, pw service.PasswordService, ts service.TokenService, otp service.OtpService, sender service.Sender, loginOtp bool) *AuthServiceImpl {
	a := &AuthServiceImpl{
		Store:           gormStoreAdapter{store: st},
		PasswordService: pw,
		TokenService:    ts,
		OtpService:      otp,
		Sender:          sender,
		LoginOtp:        loginOtp,
	}
	a.decoy = a.makeDecoy()
	return a
}

type dataStore interface {
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
	Users() userStore
}

type storeTx interface {
	Users() userStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetVerified(ctx context.Context, userID domain.UserID) error
	ClearOtp(ctx context.Context, userID domain.UserID) error
	UpdatePassword(ctx context.Context, usr *domain.User) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

func (g gormStoreAdapter) Users() userStore { return g.store.Users() }

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Users() userStore { return g.tx.Users() }

// NormalizeEmail canonicalizes an address for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func looksLikeEmail(s string) bool { return strings.ContainsRune(s, '@') }

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest, ip, ua string) (*dto.RegisterResponse, error) {
	result := "success"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	email := NormalizeEmail(r.Email)
	username := strings.TrimSpace(r.Username)
	if email == "" || r.Password == "" || !looksLikeEmail(email) {
		result = "invalid"
		return nil, domain.ErrValidation
	}
	if len(r.Password) < 8 {
		result = "invalid"
		return nil, domain.ErrPasswordLength
	}

	hash, salt, paramsJSON, algo, ver, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		result = "failure"
		return nil, err
	}

	now := time.Now().UTC()
	var usernamePtr *string
	if username != "" {
		usernamePtr = &username
	}
	u := &domain.User{
		ID:             uuid.New(),
		Email:          email,
		Username:       usernamePtr,
		IsVerified:     false, // stays false until VerifyOtp succeeds
		PasswordAlgo:   algo,
		PasswordHash:   hash,
		PasswordSalt:   salt,
		PasswordParams: paramsJSON,
		PasswordVer:    ver,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The unique indexes are the authority under concurrent registration;
	// no lookup precedes the insert.
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		return tx.Users().Create(ctx, u)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			result = "conflict"
		} else {
			result = "failure"
		}
		return nil, err
	}

	if err := a.sendChallenge(ctx, u, domain.OtpPurposeRegister); err != nil {
		result = "delivery_failed"
		return nil, err
	}

	slog.Info("registration pending verification",
		"user_id", u.ID, "ip", ip, "ua", netutil.TruncateUserAgent(ua),
		"request_id", middleware.RequestIDFromContext(ctx))

	return &dto.RegisterResponse{
		UserID:  u.ID.String(),
		Message: "verification code sent",
	}, nil
}

func (a *AuthServiceImpl) VerifyOtp(ctx context.Context, r dto.VerifyOtpRequest, ip, ua string) (*dto.TokenResponse, error) {
	email := NormalizeEmail(r.Email)
	purpose, ok := domain.ParseOtpPurpose(r.Purpose)
	if email == "" || r.Otp == "" || !ok {
		return nil, domain.ErrValidation
	}

	u, err := a.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if purpose == domain.OtpPurposeRegister && u.IsVerified {
		return nil, domain.ErrAlreadyVerified
	}

	status := a.OtpService.Validate(u, purpose, r.Otp)
	if status != service.OtpOk {
		// Internal logs keep the distinct reason; the caller only ever sees
		// one error for expired/mismatched/absent codes.
		slog.Info("otp validation rejected",
			"user_id", u.ID, "purpose", purpose, "reason", status.String(),
			"ip", ip, "request_id", middleware.RequestIDFromContext(ctx))
		return nil, domain.ErrInvalidOtp
	}

	// Consume the challenge. SetVerified clears the slot in the same write.
	if purpose == domain.OtpPurposeRegister {
		if err := a.Store.Users().SetVerified(ctx, u.ID); err != nil {
			return nil, err
		}
	} else {
		if err := a.Store.Users().ClearOtp(ctx, u.ID); err != nil {
			return nil, err
		}
	}

	token, expiresIn, err := a.TokenService.Issue(ctx, u)
	if err != nil {
		return nil, err
	}

	slog.Info("account verified", "user_id", u.ID, "purpose", purpose,
		"ip", ip, "ua", netutil.TruncateUserAgent(ua),
		"request_id", middleware.RequestIDFromContext(ctx))

	return &dto.TokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
		User:      profileOf(u),
	}, nil
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.TokenResponse, *dto.OtpSentResponse, error) {
	result := "success"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	email := NormalizeEmail(r.Email)
	if email == "" || r.Password == "" {
		result = "invalid"
		return nil, nil, domain.ErrValidation
	}

	u, err := a.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		// Burn a hash verification anyway so a missing account costs the
		// same as a wrong password.
		if a.decoy != nil {
			a.PasswordService.Verify(r.Password, a.decoy)
		}
		result = "invalid_credentials"
		return nil, nil, domain.ErrInvalidCredentials
	}

	rehashNeeded, ok := a.PasswordService.Verify(r.Password, u)
	if !ok {
		result = "invalid_credentials"
		return nil, nil, domain.ErrInvalidCredentials
	}

	// Password is confirmed from here on; only now may a login OTP go out.
	if !u.IsVerified {
		result = "not_verified"
		return nil, nil, domain.ErrNotVerified
	}

	if rehashNeeded {
		if hash, salt, paramsJSON, algo, ver, err := a.PasswordService.Hash(r.Password); err == nil {
			u.PasswordAlgo = algo
			u.PasswordHash = hash
			u.PasswordSalt = salt
			u.PasswordParams = paramsJSON
			u.PasswordVer = ver
			if err := a.Store.Users().UpdatePassword(ctx, u); err != nil {
				slog.Warn("password rehash not persisted", "user_id", u.ID, "error", err)
			}
		}
	}

	if a.LoginOtp {
		if err := a.sendChallenge(ctx, u, domain.OtpPurposeLogin); err != nil {
			result = "delivery_failed"
			return nil, nil, err
		}
		slog.Info("login otp sent", "user_id", u.ID, "ip", ip,
			"request_id", middleware.RequestIDFromContext(ctx))
		return nil, &dto.OtpSentResponse{Message: "otp sent"}, nil
	}

	token, expiresIn, err := a.TokenService.Issue(ctx, u)
	if err != nil {
		result = "failure"
		return nil, nil, err
	}

	slog.Info("login succeeded", "user_id", u.ID, "ip", ip,
		"ua", netutil.TruncateUserAgent(ua),
		"request_id", middleware.RequestIDFromContext(ctx))

	return &dto.TokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
		User:      profileOf(u),
	}, nil, nil
}

func (a *AuthServiceImpl) ResendOtp(ctx context.Context, r dto.ResendOtpRequest) (*dto.OtpSentResponse, error) {
	email := NormalizeEmail(r.Email)
	purpose, ok := domain.ParseOtpPurpose(r.Purpose)
	if email == "" || !ok {
		return nil, domain.ErrValidation
	}

	u, err := a.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	switch purpose {
	case domain.OtpPurposeRegister:
		if u.IsVerified {
			return nil, domain.ErrAlreadyVerified
		}
	case domain.OtpPurposeLogin:
		// A login code only ever follows a successful password check, so a
		// resend requires an outstanding login challenge.
		if !u.IsVerified {
			return nil, domain.ErrNotVerified
		}
		if !u.HasOtp() || u.OtpPurpose == nil || domain.OtpPurpose(*u.OtpPurpose) != domain.OtpPurposeLogin {
			return nil, domain.ErrValidation
		}
	}

	if err := a.sendChallenge(ctx, u, purpose); err != nil {
		return nil, err
	}
	return &dto.OtpSentResponse{Message: "otp sent"}, nil
}

// sendChallenge issues a fresh code and hands it to the notification
// collaborator. A delivery failure clears the slot so the account is never
// stuck behind an undeliverable code.
func (a *AuthServiceImpl) sendChallenge(ctx context.Context, u *domain.User, purpose domain.OtpPurpose) error {
	code, err := a.OtpService.Issue(ctx, u, purpose)
	if err != nil {
		return err
	}
	if err := a.Sender.SendOtp(ctx, u.Email, code, purpose); err != nil {
		slog.Error("otp delivery failed", "user_id", u.ID, "purpose", purpose, "error", err)
		if clearErr := a.Store.Users().ClearOtp(ctx, u.ID); clearErr != nil {
			slog.Error("otp slot not cleared after delivery failure", "user_id", u.ID, "error", clearErr)
		}
		return domain.ErrOtpDelivery
	}
	return nil
}

func (a *AuthServiceImpl) makeDecoy() *domain.User {
	hash, salt, paramsJSON, algo, ver, err := a.PasswordService.Hash(uuid.NewString())
	if err != nil {
		return nil
	}
	return &domain.User{
		PasswordAlgo:   algo,
		PasswordHash:   hash,
		PasswordSalt:   salt,
		PasswordParams: paramsJSON,
		PasswordVer:    ver,
	}
}

func profileOf(u *domain.User) dto.UserProfile {
	p := dto.UserProfile{
		ID:    u.ID.String(),
		Email: u.Email,
	}
	if u.Username != nil {
		p.Username = *u.Username
	}
	return p
}
