package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/clerk-sync/internal/clerk"
	"github.com/mattjoyce/clerk-sync/internal/log"
	"github.com/mattjoyce/clerk-sync/internal/signature"
	"github.com/mattjoyce/clerk-sync/internal/users"
)

// Server represents the webhook HTTP server.
type Server struct {
	config   Config
	verifier signature.Verifier
	syncer   users.Syncer
	logger   *slog.Logger
	server   *http.Server
}

// New creates a new webhook server instance. A nil verifier selects the
// native Svix verifier with the configured tolerance.
func New(config Config, verifier signature.Verifier, syncer users.Syncer, logger *slog.Logger) *Server {
	if config.MaxBodySize == 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if verifier == nil {
		verifier = signature.NewSvixVerifier(config.Tolerance)
	}

	return &Server{
		config:   config,
		verifier: verifier,
		syncer:   syncer,
		logger:   logger,
	}
}

// Start starts the webhook HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.config.Secret == "" {
		s.logger.Error("webhook signing secret not configured; all deliveries will be rejected with 500")
	}
	s.logger.Info("webhook server starting", "listen", s.config.Listen, "path", s.config.Path)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(s.config.Path, s.handleClerkWebhook)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondText(w, http.StatusOK, "ok")
	})

	return r
}

// loggingMiddleware logs HTTP requests (excludes payloads).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("webhook request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleClerkWebhook runs the verification pipeline for one delivery.
// Every branch ends in exactly one response.
func (s *Server) handleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	if s.config.Secret == "" {
		s.logger.Error("webhook signing secret not configured")
		respondText(w, http.StatusInternalServerError, msgConfigurationError)
		return
	}

	headers := signature.HeadersFrom(r.Header)
	if !headers.Complete() {
		s.logger.Warn("webhook rejected: missing svix headers",
			"has_id", headers.ID != "",
			"has_signature", headers.Signature != "",
			"has_timestamp", headers.Timestamp != "",
		)
		respondText(w, http.StatusBadRequest, msgMissingHeaders)
		return
	}
	logger := log.WithDelivery(s.logger, headers.ID)

	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodySize+1))
	if err != nil {
		logger.Error("failed to read webhook body", "error", err)
		respondText(w, http.StatusInternalServerError, msgReadFailed)
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		logger.Warn("webhook rejected: payload too large", "limit", s.config.MaxBodySize)
		respondText(w, http.StatusRequestEntityTooLarge, msgPayloadTooLarge)
		return
	}

	if err := clerk.CheckSyntax(body); err != nil {
		logger.Warn("webhook rejected: failed to parse payload", "error", err)
		respondText(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	// Verified over the bytes received; nothing is decoded until it passes.
	if err := s.verifier.Verify(s.config.Secret, body, headers); err != nil {
		logger.Warn("webhook signature verification failed", "error", err)
		respondText(w, http.StatusBadRequest, msgInvalidSignature)
		return
	}

	envelope, err := clerk.ParseEnvelope(body)
	if err != nil {
		logger.Warn("webhook rejected: failed to parse payload", "error", err)
		respondText(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	event, err := envelope.Decode()
	if err != nil {
		logger.Warn("webhook rejected: malformed event data", "type", envelope.Type, "error", err)
		respondText(w, http.StatusBadRequest, msgInvalidEventData)
		return
	}

	switch evt := event.(type) {
	case clerk.UserCreated:
		if status, msg, ok := s.syncUser(r.Context(), logger, evt); !ok {
			respondText(w, status, msg)
			return
		}
	default:
		logger.Warn("unhandled webhook event type", "type", evt.EventType())
	}

	respondText(w, http.StatusOK, msgProcessed)
}

// syncUser forwards a user.created event to the user store. On failure it
// returns the response to send.
func (s *Server) syncUser(ctx context.Context, logger *slog.Logger, evt clerk.UserCreated) (int, string, bool) {
	req, err := evt.User.SyncRequest()
	if err != nil {
		field := "id"
		if errors.Is(err, clerk.ErrMissingEmail) {
			field = "email"
		}
		logger.Warn("webhook rejected: missing required user data",
			"type", evt.EventType(),
			"field", field,
			"user_id", evt.User.ID,
		)
		return http.StatusBadRequest, msgInvalidEventData, false
	}

	if err := s.syncer.SyncUser(ctx, req); err != nil {
		logger.Error("failed to sync user", "user_id", req.ExternalID, "error", err)
		return http.StatusInternalServerError, msgSyncFailed, false
	}

	logger.Info("user synced", "user_id", req.ExternalID)
	return 0, "", true
}

// respondText sends a plain text response.
func respondText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message)
}
