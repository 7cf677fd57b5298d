package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/poyrazK/keyportal/internal/core/domain"
)

// MemoryRepo is an in-memory CredentialRepository and AdminRepository for handler
// and end-to-end tests. Set FailDeleteCredential to simulate a partial delete.
type MemoryRepo struct {
	mu          sync.Mutex
	credentials map[int64]domain.Credential
	users       map[int64]domain.User
	admins      []domain.Admin
	nextKey     int64
	nextUser    int64
	nextAdmin   int64

	FailDeleteCredential bool
	PingErr              error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		credentials: make(map[int64]domain.Credential),
		users:       make(map[int64]domain.User),
	}
}

func (m *MemoryRepo) CreateCredential(_ context.Context, cred *domain.Credential) error {
	if cred.APIKey == "" {
		return fmt.Errorf("%w: api key is required", domain.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextKey++
	cred.KeyID = m.nextKey
	m.credentials[cred.KeyID] = *cred
	return nil
}

func (m *MemoryRepo) CreateUser(_ context.Context, user *domain.User) error {
	if err := domain.ValidateUser(user); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.credentials[user.KeyID]; !ok {
		return errors.New("foreign key violation: credential does not exist")
	}
	m.nextUser++
	user.UserID = m.nextUser
	m.users[user.UserID] = *user
	return nil
}

func (m *MemoryRepo) CreateUserWithCredential(ctx context.Context, cred *domain.Credential, user *domain.User) error {
	if err := m.CreateCredential(ctx, cred); err != nil {
		return err
	}
	user.KeyID = cred.KeyID
	if err := m.CreateUser(ctx, user); err != nil {
		m.mu.Lock()
		delete(m.credentials, cred.KeyID)
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryRepo) ListUserCredentials(_ context.Context) ([]domain.UserCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.UserCredential, 0, len(m.users))
	for _, u := range m.users {
		c, ok := m.credentials[u.KeyID]
		if !ok {
			continue
		}
		out = append(out, domain.UserCredential{
			UserID:    u.UserID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			APIKey:    c.APIKey,
			ExpiresAt: c.ExpiresAt,
			KeyID:     c.KeyID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID > out[j].UserID })
	return out, nil
}

func (m *MemoryRepo) DeleteUserAndCredential(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if m.FailDeleteCredential {
		return fmt.Errorf("delete credential %d: %w", u.KeyID, domain.ErrPartialDelete)
	}
	delete(m.users, userID)
	delete(m.credentials, u.KeyID)
	return nil
}

func (m *MemoryRepo) Ping(context.Context) error { return m.PingErr }

func (m *MemoryRepo) CreateAdmin(_ context.Context, admin *domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAdmin++
	admin.AdminID = m.nextAdmin
	m.admins = append(m.admins, *admin)
	return nil
}

func (m *MemoryRepo) GetAdminByEmail(_ context.Context, email string) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

// CredentialCount reports stored credentials, orphans included.
func (m *MemoryRepo) CredentialCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.credentials)
}

// StubTokens returns Tokens in order, then Err once exhausted.
type StubTokens struct {
	mu     sync.Mutex
	Tokens []string
	Err    error
}

func (s *StubTokens) Token(byteLength int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Tokens) == 0 {
		if s.Err != nil {
			return "", s.Err
		}
		return strings.Repeat("0", 2*byteLength), nil
	}
	tok := s.Tokens[0]
	s.Tokens = s.Tokens[1:]
	return tok, nil
}

// PlainVault is a reversible PasswordVault stand-in so service tests avoid bcrypt's cost.
type PlainVault struct {
	HashErr error
}

func (v PlainVault) Hash(plaintext string) (string, error) {
	if v.HashErr != nil {
		return "", v.HashErr
	}
	return "plain:" + plaintext, nil
}

func (v PlainVault) Verify(plaintext, hash string) bool {
	return hash == "plain:"+plaintext
}
