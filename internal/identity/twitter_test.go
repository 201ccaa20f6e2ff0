package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testProvider(t *testing.T) *Provider {
	t.Helper()
	return NewProvider(Config{
		ClientID:     "client",
		ClientSecret: "secret",
		CallbackURL:  "https://example.com/twitter/callback",
	}, nil, zap.NewNop())
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "the-verifier", r.PostForm.Get("code_verifier"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)

		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	}))
	defer srv.Close()

	p := testProvider(t)
	p.tokenURL = srv.URL

	token, err := p.exchangeCode(context.Background(), "the-code", "the-verifier")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestExchangeCodeRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := testProvider(t)
	p.tokenURL = srv.URL

	_, err := p.exchangeCode(context.Background(), "code", "verifier")
	require.Error(t, err)
}

func TestFetchUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"username": "borgpad"},
		})
	}))
	defer srv.Close()

	p := testProvider(t)
	p.meURL = srv.URL

	handle, err := p.fetchUsername(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "borgpad", handle)
}

func TestFetchUsernameRejectsEmptyHandle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{}})
	}))
	defer srv.Close()

	p := testProvider(t)
	p.meURL = srv.URL

	_, err := p.fetchUsername(context.Background(), "tok")
	require.Error(t, err)
}

func TestRandomVerifierIsUnique(t *testing.T) {
	a, err := randomVerifier()
	require.NoError(t, err)
	b, err := randomVerifier()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 43, "PKCE verifiers must be at least 43 characters")
}
