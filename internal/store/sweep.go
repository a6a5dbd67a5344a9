package store

import (
	"context"
	"log/slog"
	"time"

	"assettrack/internal/domain"
)

// Sweeper removes provisional accounts that never completed OTP verification.
// Expiry of unverified records is an explicit background sweep rather than a
// store-native TTL.
type Sweeper struct {
	Store    *Store
	TTL      time.Duration
	Interval time.Duration
}

// Run blocks until ctx is cancelled, sweeping once immediately and then on
// every tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.TTL)

	err := s.Store.WithTx(ctx, func(tx *Store) error {
		// Unverified accounts never held a token, but clean owned rows anyway
		// so a partial write can not orphan them.
		sub := tx.DB.WithContext(ctx).Model(&domain.User{}).
			Select("id").
			Where("is_verified = ? AND created_at < ?", false, cutoff)
		if err := tx.DB.WithContext(ctx).
			Where("user_id IN (?)", sub).
			Delete(&domain.Asset{}).Error; err != nil {
			return err
		}

		purged, err := tx.Users().PurgeUnverified(ctx, cutoff)
		if err != nil {
			return err
		}
		if purged > 0 {
			slog.Info("purged unverified accounts", "count", purged, "cutoff", cutoff)
		}
		return nil
	})
	if err != nil {
		slog.Error("unverified sweep failed", "error", err)
	}
}
