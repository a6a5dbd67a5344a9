package store

import (
	"context"
	"errors"
	"time"

	"assettrack/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetStore scopes every operation to the owning account. A lookup with the
// wrong owner behaves exactly like a missing row.
type AssetStore struct{ db *gorm.DB }

func (s *Store) Assets() *AssetStore { return &AssetStore{db: s.DB} }

func (a *AssetStore) Create(ctx context.Context, asset *domain.Asset) error {
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	return a.db.WithContext(ctx).Create(asset).Error
}

func (a *AssetStore) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&assets).Error
	return assets, err
}

func (a *AssetStore) GetByID(ctx context.Context, userID domain.UserID, id domain.AssetID) (*domain.Asset, error) {
	var asset domain.Asset
	if err := a.db.WithContext(ctx).First(&asset, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

func (a *AssetStore) Update(ctx context.Context, asset *domain.Asset) error {
	res := a.db.WithContext(ctx).Model(&domain.Asset{}).
		Where("id = ? AND user_id = ?", asset.ID, asset.UserID).
		Updates(map[string]interface{}{
			"category":   asset.Category,
			"name":       asset.Name,
			"quantity":   asset.Quantity,
			"unit_price": asset.UnitPrice,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

func (a *AssetStore) Delete(ctx context.Context, userID domain.UserID, id domain.AssetID) error {
	res := a.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Asset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}
