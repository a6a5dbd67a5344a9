package impl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"assettrack/internal/domain"
	"assettrack/internal/service"

	"github.com/google/uuid"
)

// memoryUsers is an in-memory stand-in for the gorm user store. It enforces
// the same uniqueness the DB indexes do.
type memoryUsers struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*domain.User
	byEmail    map[string]uuid.UUID
	byUsername map[string]uuid.UUID
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		byID:       make(map[uuid.UUID]*domain.User),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.OtpCode != nil {
		v := *u.OtpCode
		c.OtpCode = &v
	}
	if u.OtpPurpose != nil {
		v := *u.OtpPurpose
		c.OtpPurpose = &v
	}
	if u.OtpExpiresAt != nil {
		v := *u.OtpExpiresAt
		c.OtpExpiresAt = &v
	}
	if u.Username != nil {
		v := *u.Username
		c.Username = &v
	}
	return &c
}

func (m *memoryUsers) Create(ctx context.Context, usr *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[usr.Email]; exists {
		return domain.ErrDuplicateIdentity
	}
	if usr.Username != nil {
		if _, exists := m.byUsername[*usr.Username]; exists {
			return domain.ErrDuplicateIdentity
		}
	}
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	m.byID[usr.ID] = cloneUser(usr)
	m.byEmail[usr.Email] = usr.ID
	if usr.Username != nil {
		m.byUsername[*usr.Username] = usr.ID
	}
	return nil
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(m.byID[id]), nil
}

func (m *memoryUsers) SetVerified(ctx context.Context, userID domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsVerified = true
	u.OtpCode, u.OtpPurpose, u.OtpExpiresAt = nil, nil, nil
	return nil
}

func (m *memoryUsers) SetOtp(ctx context.Context, userID domain.UserID, code string, purpose domain.OtpPurpose, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	p := string(purpose)
	u.OtpCode, u.OtpPurpose, u.OtpExpiresAt = &code, &p, &expiresAt
	return nil
}

func (m *memoryUsers) ClearOtp(ctx context.Context, userID domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.OtpCode, u.OtpPurpose, u.OtpExpiresAt = nil, nil, nil
	return nil
}

func (m *memoryUsers) UpdatePassword(ctx context.Context, usr *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[usr.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordAlgo = usr.PasswordAlgo
	u.PasswordHash = usr.PasswordHash
	u.PasswordSalt = usr.PasswordSalt
	u.PasswordParams = usr.PasswordParams
	u.PasswordVer = usr.PasswordVer
	return nil
}

type memoryStore struct {
	users *memoryUsers
}

func newMemoryStore() *memoryStore { return &memoryStore{users: newMemoryUsers()} }

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	return fn(m)
}

func (m *memoryStore) Users() userStore { return m.users }

// stubPasswordService hashes deterministically so tests stay fast.
type stubPasswordService struct {
	hashCalls   int
	verifyCalls int
}

func (s *stubPasswordService) Hash(password string) (hash, salt, paramsJSON []byte, algo string, ver int, err error) {
	s.hashCalls++
	return []byte("h:" + password), []byte("salt"), []byte("{}"), "stub", 1, nil
}

func (s *stubPasswordService) Verify(password string, cred interface {
	GetAlgo() string
	GetHash() []byte
	GetSalt() []byte
	GetParamsJSON() []byte
	GetPasswordVer() int
}) (rehashNeeded bool, ok bool) {
	s.verifyCalls++
	return false, string(cred.GetHash()) == "h:"+password
}

type stubTokenService struct {
	issueErr   error
	issueCalls int
}

func (s *stubTokenService) Issue(ctx context.Context, user *domain.User) (string, int64, error) {
	s.issueCalls++
	if s.issueErr != nil {
		return "", 0, s.issueErr
	}
	return "token-for-" + user.ID.String(), 86400, nil
}

func (s *stubTokenService) Verify(token string) (*service.Claims, error) {
	return nil, domain.ErrInvalidToken
}

type stubSender struct {
	mu      sync.Mutex
	sendErr error
	sent    []sentOtp
}

type sentOtp struct {
	to      string
	code    string
	purpose domain.OtpPurpose
}

func (s *stubSender) SendOtp(ctx context.Context, to, code string, purpose domain.OtpPurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, sentOtp{to: to, code: code, purpose: purpose})
	return nil
}

func (s *stubSender) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1].code
}

type authFixture struct {
	auth   *AuthServiceImpl
	store  *memoryStore
	otp    *OtpServiceImpl
	sender *stubSender
	tokens *stubTokenService
	pw     *stubPasswordService
	clock  *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newAuthFixture(loginOtp bool) *authFixture {
	st := newMemoryStore()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	otp := NewOtpService(st.users, 10*time.Minute)
	otp.now = clock.Now
	sender := &stubSender{}
	tokens := &stubTokenService{}
	pw := &stubPasswordService{}

	a := &AuthServiceImpl{
		Store:           st,
		PasswordService: pw,
		TokenService:    tokens,
		OtpService:      otp,
		Sender:          sender,
		LoginOtp:        loginOtp,
	}
	a.decoy = a.makeDecoy()

	return &authFixture{auth: a, store: st, otp: otp, sender: sender, tokens: tokens, pw: pw, clock: clock}
}

func (f *authFixture) mustUser(email string) *domain.User {
	u, err := f.store.users.GetByEmail(context.Background(), strings.ToLower(email))
	if err != nil {
		panic(fmt.Sprintf("user %q not in store: %v", email, err))
	}
	return u
}
