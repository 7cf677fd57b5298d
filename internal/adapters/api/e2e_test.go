package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/poyrazK/keyportal/internal/adapters/session"
	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/poyrazK/keyportal/internal/core/services"
	"github.com/poyrazK/keyportal/internal/infrastructure/secret"
	"github.com/poyrazK/keyportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestEndToEnd drives the whole lifecycle over a real listener with bcrypt hashing.
func TestEndToEnd(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := testutil.NewMemoryRepo()
	tokens := secret.NewGenerator()
	vault, err := secret.NewBcryptVault(bcrypt.MinCost)
	require.NoError(t, err)

	registry := services.NewSessionRegistry(session.NewMemoryStore(), tokens, 0)
	h := NewAPIHandler(
		services.NewCredentialService(repo, tokens, 0, logger),
		services.NewAdminService(repo, vault, registry, logger),
		logger,
	)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	call := func(method, path, token, body string) (int, []byte) {
		t.Helper()
		req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, raw
	}

	code, _ := call(http.MethodPost, "/admin/register", "", `{"Email":"a@x.com","Password":"pw123"}`)
	require.Equal(t, http.StatusOK, code)

	code, raw := call(http.MethodPost, "/admin/login", "", `{"Email":"a@x.com","Password":"pw123"}`)
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))
	require.NotEmpty(t, login.Token)

	code, raw = call(http.MethodGet, "/admin/users", login.Token, "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(raw))

	code, raw = call(http.MethodPost, "/generate", "", "")
	require.Equal(t, http.StatusOK, code)
	var gen struct {
		APIKey string `json:"apiKey"`
	}
	require.NoError(t, json.Unmarshal(raw, &gen))

	code, _ = call(http.MethodPost, "/user", "", `{"FirstName":"Grace","LastName":"Hopper","Email":"g@x.com","apiKey":"`+gen.APIKey+`"}`)
	require.Equal(t, http.StatusOK, code)

	code, raw = call(http.MethodGet, "/admin/users", login.Token, "")
	require.Equal(t, http.StatusOK, code)
	var rows []domain.UserCredential
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, gen.APIKey, rows[0].APIKey)
	assert.Equal(t, domain.StatusActive, rows[0].Status)
	assert.Equal(t, "Grace", rows[0].FirstName)

	code, _ = call(http.MethodDelete, "/admin/user/"+strconv.FormatInt(rows[0].UserID, 10), login.Token, "")
	require.Equal(t, http.StatusOK, code)

	code, raw = call(http.MethodGet, "/admin/users", login.Token, "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(raw))
	assert.Equal(t, 0, repo.CredentialCount())

	code, _ = call(http.MethodPost, "/admin/login", "", `{"Email":"a@x.com","Password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}
