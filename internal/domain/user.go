package domain

import "time"

type User struct {
	ID UserID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	// Username is optional; NULL keeps absent names out of the unique index.
	Email      string  `gorm:"type:citext;uniqueIndex:ux_users_email" db:"email" json:"email"`
	Username   *string `gorm:"type:citext;uniqueIndex:ux_users_username" db:"username" json:"username,omitempty"`
	IsVerified bool    `gorm:"not null;default:false" db:"is_verified" json:"isVerified"`

	// Password credential (argon2id). Params are stored alongside the hash so
	// verification always uses the original cost.
	PasswordAlgo   string `gorm:"type:text;not null" db:"password_algo" json:"-"`
	PasswordHash   []byte `gorm:"type:bytea;not null" db:"password_hash" json:"-"`
	PasswordSalt   []byte `gorm:"type:bytea;not null" db:"password_salt" json:"-"`
	PasswordParams []byte `gorm:"type:jsonb;not null" db:"password_params" json:"-"`
	PasswordVer    int    `gorm:"not null;default:1" db:"password_ver" json:"-"`

	// OTP challenge slot. Either all three are set or all three are nil;
	// store.SetOtp / store.ClearOtp write the triple in a single UPDATE.
	OtpCode      *string    `gorm:"type:text" db:"otp_code" json:"-"`
	OtpPurpose   *string    `gorm:"type:text" db:"otp_purpose" json:"-"`
	OtpExpiresAt *time.Time `gorm:"type:timestamp" db:"otp_expires_at" json:"-"`

	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) GetAlgo() string       { return u.PasswordAlgo }
func (u *User) GetHash() []byte       { return u.PasswordHash }
func (u *User) GetSalt() []byte       { return u.PasswordSalt }
func (u *User) GetParamsJSON() []byte { return u.PasswordParams }
func (u *User) GetPasswordVer() int   { return u.PasswordVer }

// HasOtp reports whether an OTP challenge is currently outstanding.
func (u *User) HasOtp() bool {
	return u.OtpCode != nil && u.OtpExpiresAt != nil
}
