package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/poyrazK/keyportal/internal/adapters/session"
	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/poyrazK/keyportal/internal/core/services"
	"github.com/poyrazK/keyportal/internal/infrastructure/config"
	"github.com/poyrazK/keyportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemoryBackend(t *testing.T) *testutil.MemoryRepo {
	t.Helper()
	t.Chdir(t.TempDir())

	repo := testutil.NewMemoryRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := &testutil.StubTokens{Tokens: []string{strings.Repeat("ab", domain.APIKeyBytes)}}
	registry := services.NewSessionRegistry(session.NewMemoryStore(), tokens, 0)

	prev := openBackend
	openBackend = func(context.Context, *config.Config) (*backend, func(), error) {
		return &backend{
			creds:  services.NewCredentialService(repo, tokens, 0, logger),
			admins: services.NewAdminService(repo, testutil.PlainVault{}, registry, logger),
		}, func() {}, nil
	}
	t.Cleanup(func() { openBackend = prev })
	return repo
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	repo := useMemoryBackend(t)

	out, err := execute(t, "", "generate")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ab", domain.APIKeyBytes)+"\n", out)
	assert.Equal(t, 0, repo.CredentialCount())
}

func TestIssueListRevoke(t *testing.T) {
	repo := useMemoryBackend(t)

	out, err := execute(t, "", "issue", "--first", "Ada", "--last", "Lovelace", "--email", "ada@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "User ID:    1")
	assert.Contains(t, out, "VALUE:      "+strings.Repeat("ab", domain.APIKeyBytes))
	assert.Equal(t, 1, repo.CredentialCount())

	out, err = execute(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@x.com")
	assert.Contains(t, out, "abababab…")
	assert.Contains(t, out, string(domain.StatusActive))

	out, err = execute(t, "", "revoke", "--id", "1")
	require.NoError(t, err)
	assert.Equal(t, "User 1 revoked (deleted)\n", out)
	assert.Equal(t, 0, repo.CredentialCount())

	out, err = execute(t, "", "list")
	require.NoError(t, err)
	assert.Equal(t, "No users found.\n", out)
}

func TestIssue_MissingFields(t *testing.T) {
	repo := useMemoryBackend(t)

	_, err := execute(t, "", "issue", "--first", "Ada")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, repo.CredentialCount())
}

func TestRevoke_Errors(t *testing.T) {
	useMemoryBackend(t)

	_, err := execute(t, "", "revoke")
	assert.ErrorContains(t, err, "--id is required")

	_, err = execute(t, "", "revoke", "--id", "x1")
	assert.ErrorContains(t, err, "invalid user id")

	_, err = execute(t, "", "revoke", "--id", "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminRegister(t *testing.T) {
	repo := useMemoryBackend(t)

	out, err := execute(t, "", "admin", "register", "--email", "a@x.com", "--password", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "Admin 1 registered for a@x.com\n", out)

	out, err = execute(t, "s3cret phrase\n", "admin", "register", "--email", "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Admin 2 registered for b@x.com\n", out)

	a, err := repo.GetAdminByEmail(context.Background(), "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "plain:s3cret phrase", a.PasswordHash)

	_, err = execute(t, "", "admin", "register", "--email", "c@x.com")
	assert.ErrorContains(t, err, "read password")
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "short", keyPrefix("short"))
	assert.Equal(t, "01234567…", keyPrefix("0123456789"))
}
