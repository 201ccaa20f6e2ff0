package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// CallbackServer terminates the OAuth redirect: it completes the
// verification and bounces the browser back into Telegram with a
// twitter_success deep link that the bot turns into a verified session.
type CallbackServer struct {
	provider    *Provider
	botUsername string
	server      *http.Server
	logger      *zap.Logger
}

func NewCallbackServer(addr, botUsername string, provider *Provider, logger *zap.Logger) *CallbackServer {
	s := &CallbackServer{
		provider:    provider,
		botUsername: botUsername,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /twitter/callback", s.handleCallback)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled.
func (s *CallbackServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("OAuth callback server listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("callback server: %w", err)
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" || state == "" {
		http.Error(w, "Missing parameters", http.StatusBadRequest)
		return
	}

	handle, userID, err := s.provider.CompleteVerification(r.Context(), code, state)
	if err != nil {
		s.logger.Warn("Twitter verification failed",
			zap.String("state", state),
			zap.Error(err))
		http.Error(w, "Twitter authentication failed", http.StatusBadRequest)
		return
	}

	s.logger.Info("Twitter verification succeeded",
		zap.Int64("user_id", userID),
		zap.String("handle", handle))

	redirect := fmt.Sprintf("https://t.me/%s?start=twitter_success_%s",
		s.botUsername, url.QueryEscape(handle))
	http.Redirect(w, r, redirect, http.StatusFound)
}
