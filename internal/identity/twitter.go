// Package identity implements the X (Twitter) OAuth2 authorization-code
// flow with PKCE that gates the questionnaire, and the HTTP callback server
// that hands the verified handle back to Telegram via a /start deep link.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	authorizeURL = "https://twitter.com/i/oauth2/authorize"
	tokenURL     = "https://api.twitter.com/2/oauth2/token"
	meURL        = "https://api.twitter.com/2/users/me"
)

type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	HTTPTimeout  time.Duration
}

// Provider drives the OAuth dance. The rest of the system only consumes
// BeginVerification (an authorization URL) and CompleteVerification (a
// verified handle).
type Provider struct {
	cfg        Config
	pending    *PendingStore
	httpClient *http.Client
	logger     *zap.Logger

	// Endpoint overrides for tests.
	tokenURL string
	meURL    string
}

func NewProvider(cfg Config, pending *PendingStore, logger *zap.Logger) *Provider {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Provider{
		cfg:     cfg,
		pending: pending,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:   logger,
		tokenURL: tokenURL,
		meURL:    meURL,
	}
}

// BeginVerification generates a PKCE authorization URL for a user and
// stores the code verifier keyed by the state token.
func (p *Provider) BeginVerification(ctx context.Context, userID int64) (string, error) {
	verifier, err := randomVerifier()
	if err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	state := uuid.NewString()

	if err := p.pending.Put(ctx, state, PendingVerification{
		UserID:       userID,
		CodeVerifier: verifier,
	}); err != nil {
		return "", fmt.Errorf("store pending verification: %w", err)
	}

	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", p.cfg.ClientID)
	params.Set("redirect_uri", p.cfg.CallbackURL)
	params.Set("scope", "tweet.read users.read")
	params.Set("state", state)
	params.Set("code_challenge", challenge)
	params.Set("code_challenge_method", "S256")

	return authorizeURL + "?" + params.Encode(), nil
}

// CompleteVerification exchanges the authorization code, fetches the user
// profile and returns the verified handle plus the Telegram user the flow
// was started for.
func (p *Provider) CompleteVerification(ctx context.Context, code, state string) (handle string, userID int64, err error) {
	pending, err := p.pending.Get(ctx, state)
	if err != nil {
		return "", 0, fmt.Errorf("unknown or expired state: %w", err)
	}

	token, err := p.exchangeCode(ctx, code, pending.CodeVerifier)
	if err != nil {
		return "", 0, fmt.Errorf("exchange code: %w", err)
	}

	handle, err = p.fetchUsername(ctx, token)
	if err != nil {
		return "", 0, fmt.Errorf("fetch profile: %w", err)
	}

	// Single use: drop the verifier once the exchange succeeded.
	if err := p.pending.Delete(ctx, state); err != nil {
		p.logger.Warn("Failed to delete pending verification",
			zap.String("state", state),
			zap.Error(err))
	}

	return handle, pending.UserID, nil
}

func (p *Provider) exchangeCode(ctx context.Context, code, verifier string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", p.cfg.CallbackURL)
	form.Set("code_verifier", verifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	return result.AccessToken, nil
}

func (p *Provider) fetchUsername(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.meURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.Data.Username == "" {
		return "", fmt.Errorf("empty username in response")
	}

	return result.Data.Username, nil
}

func randomVerifier() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
