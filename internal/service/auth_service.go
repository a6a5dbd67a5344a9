package service

import (
	"context"

	"assettrack/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest, ip, ua string) (*dto.RegisterResponse, error)
	VerifyOtp(ctx context.Context, r dto.VerifyOtpRequest, ip, ua string) (*dto.TokenResponse, error)
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.TokenResponse, *dto.OtpSentResponse, error)
	ResendOtp(ctx context.Context, r dto.ResendOtpRequest) (*dto.OtpSentResponse, error)
}
