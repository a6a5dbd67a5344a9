package impl

import (
	"context"
	"strings"
	"time"

	"assettrack/internal/domain"
	"assettrack/internal/dto"
	"assettrack/internal/store"

	"github.com/google/uuid"
)

// AssetServiceImpl is the CRUD collaborator. It only ever sees the verified
// account identifier decoded from a bearer token; ownership is enforced by
// the owner-scoped store queries underneath.
type AssetServiceImpl struct {
	Store *store.Store
}

func NewAssetServiceImpl(st *store.Store) *AssetServiceImpl {
	return &AssetServiceImpl{Store: st}
}

func (s *AssetServiceImpl) List(ctx context.Context, userID domain.UserID) ([]dto.AssetResponse, error) {
	assets, err := s.Store.Assets().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		out = append(out, assetResponse(&assets[i]))
	}
	return out, nil
}

func (s *AssetServiceImpl) Create(ctx context.Context, userID domain.UserID, r dto.AssetRequest) (*dto.AssetResponse, error) {
	if err := validateAsset(r); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	asset := &domain.Asset{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  strings.TrimSpace(r.Category),
		Name:      strings.TrimSpace(r.Name),
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Assets().Create(ctx, asset); err != nil {
		return nil, err
	}
	resp := assetResponse(asset)
	return &resp, nil
}

func (s *AssetServiceImpl) Get(ctx context.Context, userID domain.UserID, id domain.AssetID) (*dto.AssetResponse, error) {
	asset, err := s.Store.Assets().GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := assetResponse(asset)
	return &resp, nil
}

func (s *AssetServiceImpl) Update(ctx context.Context, userID domain.UserID, id domain.AssetID, r dto.AssetRequest) (*dto.AssetResponse, error) {
	if err := validateAsset(r); err != nil {
		return nil, err
	}
	asset := &domain.Asset{
		ID:        id,
		UserID:    userID,
		Category:  strings.TrimSpace(r.Category),
		Name:      strings.TrimSpace(r.Name),
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
	}
	if err := s.Store.Assets().Update(ctx, asset); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

func (s *AssetServiceImpl) Delete(ctx context.Context, userID domain.UserID, id domain.AssetID) error {
	return s.Store.Assets().Delete(ctx, userID, id)
}

func validateAsset(r dto.AssetRequest) error {
	if strings.TrimSpace(r.Name) == "" {
		return domain.ErrValidation
	}
	if r.Quantity < 0 || r.UnitPrice < 0 {
		return domain.ErrValidation
	}
	return nil
}

func assetResponse(a *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:        a.ID.String(),
		Category:  a.Category,
		Name:      a.Name,
		Quantity:  a.Quantity,
		UnitPrice: a.UnitPrice,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
