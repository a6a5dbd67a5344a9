package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"assettrack/internal/domain"
	"assettrack/internal/store"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Asset{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return store.New(db)
}

func newUser(email, username string) *domain.User {
	now := time.Now().UTC()
	var usernamePtr *string
	if username != "" {
		usernamePtr = &username
	}
	return &domain.User{
		ID:             uuid.New(),
		Email:          email,
		Username:       usernamePtr,
		PasswordAlgo:   "argon2id",
		PasswordHash:   []byte("hash"),
		PasswordSalt:   []byte("salt"),
		PasswordParams: []byte("{}"),
		PasswordVer:    1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestUserUniqueness(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	if err := st.Users().Create(ctx, newUser("a@x.com", "alice")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := st.Users().Create(ctx, newUser("a@x.com", "alice2"))
	if !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicateIdentity", err)
	}
	err = st.Users().Create(ctx, newUser("b@x.com", "alice"))
	if !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("duplicate username: got %v, want ErrDuplicateIdentity", err)
	}
}

func TestUserLookups(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	u := newUser("a@x.com", "alice")
	if err := st.Users().Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.Users().GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("got user %s, want %s", got.ID, u.ID)
	}
	byName, err := st.Users().GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != u.ID {
		t.Fatalf("got user %s, want %s", byName.ID, u.ID)
	}
	if _, err := st.Users().GetByEmail(ctx, "ghost@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("missing user: got %v, want ErrUserNotFound", err)
	}
	if _, err := st.Users().GetByID(ctx, uuid.New()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("missing id: got %v, want ErrUserNotFound", err)
	}
}

func TestOtpSlotLifecycle(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	u := newUser("a@x.com", "")
	if err := st.Users().Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	expires := time.Now().UTC().Add(10 * time.Minute)
	if err := st.Users().SetOtp(ctx, u.ID, "123456", domain.OtpPurposeRegister, expires); err != nil {
		t.Fatalf("set otp: %v", err)
	}

	got, _ := st.Users().GetByEmail(ctx, "a@x.com")
	if !got.HasOtp() || got.OtpPurpose == nil {
		t.Fatalf("otp slot must be fully present after SetOtp")
	}
	if *got.OtpCode != "123456" || *got.OtpPurpose != string(domain.OtpPurposeRegister) {
		t.Fatalf("slot content %q/%q", *got.OtpCode, *got.OtpPurpose)
	}

	if err := st.Users().ClearOtp(ctx, u.ID); err != nil {
		t.Fatalf("clear otp: %v", err)
	}
	got, _ = st.Users().GetByEmail(ctx, "a@x.com")
	if got.OtpCode != nil || got.OtpPurpose != nil || got.OtpExpiresAt != nil {
		t.Fatalf("otp slot must be fully absent after ClearOtp")
	}
}

func TestSetVerifiedClearsSlotAndIsIdempotent(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	u := newUser("a@x.com", "")
	if err := st.Users().Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Users().SetOtp(ctx, u.ID, "123456", domain.OtpPurposeRegister, time.Now().UTC().Add(time.Minute)); err != nil {
		t.Fatalf("set otp: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := st.Users().SetVerified(ctx, u.ID); err != nil {
			t.Fatalf("set verified (call %d): %v", i+1, err)
		}
	}

	got, _ := st.Users().GetByEmail(ctx, "a@x.com")
	if !got.IsVerified {
		t.Fatalf("user must be verified")
	}
	if got.HasOtp() {
		t.Fatalf("SetVerified must clear the otp slot")
	}
}

func TestPurgeUnverified(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	stale := newUser("stale@x.com", "")
	stale.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh := newUser("fresh@x.com", "")
	verified := newUser("done@x.com", "")
	verified.CreatedAt = stale.CreatedAt
	verified.IsVerified = true

	for _, u := range []*domain.User{stale, fresh, verified} {
		if err := st.Users().Create(ctx, u); err != nil {
			t.Fatalf("create %s: %v", u.Email, err)
		}
	}

	purged, err := st.Users().PurgeUnverified(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged %d rows, want 1", purged)
	}

	if _, err := st.Users().GetByEmail(ctx, "stale@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("stale account must be gone, got %v", err)
	}
	if _, err := st.Users().GetByEmail(ctx, "fresh@x.com"); err != nil {
		t.Fatalf("fresh pending account must survive: %v", err)
	}
	if _, err := st.Users().GetByEmail(ctx, "done@x.com"); err != nil {
		t.Fatalf("verified account must survive: %v", err)
	}
}

func TestAssetOwnershipScoping(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	owner := newUser("owner@x.com", "")
	other := newUser("other@x.com", "")
	for _, u := range []*domain.User{owner, other} {
		if err := st.Users().Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	asset := &domain.Asset{
		ID:        uuid.New(),
		UserID:    owner.ID,
		Category:  "stock",
		Name:      "ACME",
		Quantity:  10,
		UnitPrice: 99.5,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := st.Assets().Create(ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	// Reads, updates and deletes through a foreign account behave like the
	// row does not exist.
	if _, err := st.Assets().GetByID(ctx, other.ID, asset.ID); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("cross-user get: got %v, want ErrAssetNotFound", err)
	}
	if err := st.Assets().Delete(ctx, other.ID, asset.ID); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("cross-user delete: got %v, want ErrAssetNotFound", err)
	}
	foreign := *asset
	foreign.UserID = other.ID
	foreign.Name = "hijacked"
	if err := st.Assets().Update(ctx, &foreign); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("cross-user update: got %v, want ErrAssetNotFound", err)
	}

	// The owner's row is untouched.
	got, err := st.Assets().GetByID(ctx, owner.ID, asset.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if got.Name != "ACME" {
		t.Fatalf("asset mutated by a foreign account: %q", got.Name)
	}

	if err := st.Assets().Delete(ctx, owner.ID, asset.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	list, err := st.Assets().ListByUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(list))
	}
}

func TestSweeperPurgesStaleAccounts(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	stale := newUser("stale@x.com", "")
	stale.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	if err := st.Users().Create(ctx, stale); err != nil {
		t.Fatalf("create: %v", err)
	}

	sweeper := &store.Sweeper{Store: st, TTL: 24 * time.Hour, Interval: time.Hour}

	// Run sweeps once immediately; the deadline stops the loop well before
	// the first tick.
	runCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	sweeper.Run(runCtx)

	if _, err := st.Users().GetByEmail(ctx, "stale@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("stale account must be swept, got %v", err)
	}
}
