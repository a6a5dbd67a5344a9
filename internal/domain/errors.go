package domain

import "errors"

var (
	ErrValidation         = errors.New("invalid request")
	ErrPasswordLength     = errors.New("password too short")
	ErrDuplicateIdentity  = errors.New("email or username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOtp         = errors.New("invalid or expired otp")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrNotVerified        = errors.New("account not verified")
	ErrOtpDelivery        = errors.New("could not deliver otp")
	ErrMissingToken       = errors.New("missing bearer token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAssetNotFound      = errors.New("asset not found")
)
