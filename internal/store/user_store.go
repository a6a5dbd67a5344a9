package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"assettrack/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

// Create inserts a new account. The DB unique indexes on email/username are
// the authority under concurrent registration; their violation surfaces as
// domain.ErrDuplicateIdentity.
func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	if err := u.db.WithContext(ctx).Create(usr).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateIdentity
		}
		return err
	}
	return nil
}

func (u *UserStore) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetVerified marks the account verified and clears any outstanding OTP
// challenge in the same UPDATE. Safe to call repeatedly.
func (u *UserStore) SetVerified(ctx context.Context, userID domain.UserID) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_verified":    true,
			"otp_code":       nil,
			"otp_purpose":    nil,
			"otp_expires_at": nil,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// SetOtp writes the challenge triple atomically, replacing any prior
// outstanding code for the account.
func (u *UserStore) SetOtp(ctx context.Context, userID domain.UserID, code string, purpose domain.OtpPurpose, expiresAt time.Time) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"otp_code":       code,
			"otp_purpose":    string(purpose),
			"otp_expires_at": expiresAt.UTC(),
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (u *UserStore) ClearOtp(ctx context.Context, userID domain.UserID) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"otp_code":       nil,
			"otp_purpose":    nil,
			"otp_expires_at": nil,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (u *UserStore) UpdatePassword(ctx context.Context, usr *domain.User) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", usr.ID).
		Updates(map[string]interface{}{
			"password_algo":   usr.PasswordAlgo,
			"password_hash":   usr.PasswordHash,
			"password_salt":   usr.PasswordSalt,
			"password_params": usr.PasswordParams,
			"password_ver":    usr.PasswordVer,
			"updated_at":      time.Now().UTC(),
		}).Error
}

// PurgeUnverified deletes accounts that never completed verification within
// the TTL window. Returns the number of rows removed.
func (u *UserStore) PurgeUnverified(ctx context.Context, olderThan time.Time) (int64, error) {
	res := u.db.WithContext(ctx).
		Where("is_verified = ? AND created_at < ?", false, olderThan.UTC()).
		Delete(&domain.User{})
	return res.RowsAffected, res.Error
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Driver-specific texts seen without TranslateError enabled.
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
