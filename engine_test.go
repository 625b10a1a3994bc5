package mailauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockUserStore struct {
	mu       sync.Mutex
	accounts map[string]Account

	getErr    error
	createErr error
	uniqueErr error
	// uniqueScript, when non-empty, supplies IsAPIKeyUnique results in
	// order; past the end every key is unique.
	uniqueScript []bool
	uniqueCalls  int
	lastKeys     []string
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{accounts: map[string]Account{}}
}

func (m *mockUserStore) GetAccountByEmail(_ context.Context, email string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return Account{}, m.getErr
	}
	account, ok := m.accounts[email]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (m *mockUserStore) IsAPIKeyUnique(_ context.Context, apiKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uniqueErr != nil {
		return false, m.uniqueErr
	}
	call := m.uniqueCalls
	m.uniqueCalls++
	m.lastKeys = append(m.lastKeys, apiKey)
	if call < len(m.uniqueScript) {
		return m.uniqueScript[call], nil
	}
	for _, account := range m.accounts {
		if account.APIKey == apiKey {
			return false, nil
		}
	}
	return true, nil
}

func (m *mockUserStore) CreateAccount(_ context.Context, input CreateAccountInput) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return Account{}, m.createErr
	}
	if _, ok := m.accounts[input.Email]; ok {
		return Account{}, ErrAccountExists
	}
	account := Account{
		Email:    input.Email,
		Name:     input.Name,
		APIKey:   input.APIKey,
		JoinDate: input.JoinDate,
	}
	m.accounts[input.Email] = account
	return account, nil
}

func (m *mockUserStore) put(account Account) {
	m.mu.Lock()
	m.accounts[account.Email] = account
	m.mu.Unlock()
}

type sentMail struct {
	email string
	code  string
	ttl   time.Duration
}

type mockMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (m *mockMailer) SendOTP(_ context.Context, email, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{email: email, code: code, ttl: ttl})
	if m.sendErr != nil {
		return m.sendErr
	}
	return nil
}

func (m *mockMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail was dispatched")
	}
	return m.sent[len(m.sent)-1].code
}

type mockTokenGranter struct {
	mu       sync.Mutex
	granted  []string
	grantErr error
}

func (m *mockTokenGranter) GrantFreeTokens(_ context.Context, apiKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.grantErr != nil {
		return m.grantErr
	}
	m.granted = append(m.granted, apiKey)
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEngine(t *testing.T, users *mockUserStore, mailer *mockMailer) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(testConfig()).
		WithUserStore(users).
		WithMailDispatcher(mailer).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// advance shifts the engine's view of time for both the OTP store and
// the rate limiter.
func advance(e *Engine, d time.Duration) {
	base := time.Now().Add(d)
	e.otps.now = func() time.Time { return base }
	e.limiter.now = func() time.Time { return base }
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().WithMailDispatcher(&mockMailer{}).Build(); err == nil {
		t.Fatal("expected error without user store")
	}
	if _, err := New().WithUserStore(newMockUserStore()).Build(); err == nil {
		t.Fatal("expected error without mail dispatcher")
	}

	b := New().WithUserStore(newMockUserStore()).WithMailDispatcher(&mockMailer{})
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected error reusing builder")
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.OTP.TTL = 0

	_, err := New().
		WithConfig(cfg).
		WithUserStore(newMockUserStore()).
		WithMailDispatcher(&mockMailer{}).
		Build()
	if err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestEngineNilSafety(t *testing.T) {
	var engine *Engine
	engine.Close()
	if engine.AuditDropped() != 0 {
		t.Fatal("expected zero dropped on nil engine")
	}
	if err := engine.SendOTP(context.Background(), "a@gmail.com"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}
