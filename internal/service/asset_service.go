package service

import (
	"context"

	"assettrack/internal/domain"
	"assettrack/internal/dto"
)

type AssetService interface {
	List(ctx context.Context, userID domain.UserID) ([]dto.AssetResponse, error)
	Create(ctx context.Context, userID domain.UserID, r dto.AssetRequest) (*dto.AssetResponse, error)
	Get(ctx context.Context, userID domain.UserID, id domain.AssetID) (*dto.AssetResponse, error)
	Update(ctx context.Context, userID domain.UserID, id domain.AssetID, r dto.AssetRequest) (*dto.AssetResponse, error)
	Delete(ctx context.Context, userID domain.UserID, id domain.AssetID) error
}
