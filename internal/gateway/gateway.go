// Package gateway is the single chokepoint for outbound backend calls:
// credential attachment, error normalization and the global handling of
// credential-rejected responses.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-client/internal/session"
	"storefront-client/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Gateway performs all backend requests. Its only side effects are
// reading the session credential and, on a credential-rejected response,
// clearing the session and firing the registered auth-reject hook.
type Gateway struct {
	baseURL      string
	client       *http.Client
	sessions     *session.Manager
	onAuthReject func()
	logger       *zap.Logger
}

// New creates a gateway against baseURL with the given request timeout.
func New(baseURL string, timeout time.Duration, sessions *session.Manager) *Gateway {
	return &Gateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		sessions: sessions,
		logger:   util.GetLogger(),
	}
}

// OnAuthReject registers the hook fired after a credential-rejected
// response has cleared the session. The coordinator uses it to cascade
// clears and signal navigation to the login entry point.
func (g *Gateway) OnAuthReject(fn func()) {
	g.onAuthReject = fn
}

// errorBody is the backend's error response shape.
type errorBody struct {
	Message string `json:"message"`
}

// Send performs one request and decodes the JSON response into out (out
// may be nil to discard the body). requiresAuth callers are expected to
// pre-empt the call when no session exists; the gateway itself does not
// block. Failures always resolve to an *APIError.
func (g *Gateway) Send(ctx context.Context, method, path string, body, out any, requiresAuth bool) error {
	ctx, span := util.StartSpan(ctx, "Gateway.Send")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindMalformed, Message: fmt.Sprintf("failed to encode request body: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: msgNetwork}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token, ok := g.sessions.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if requiresAuth {
		g.logger.Debug("Authenticated endpoint called without a session",
			zap.String("method", method),
			zap.String("path", path))
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	util.APIRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	if err != nil {
		util.APIErrorsTotal.WithLabelValues(KindNetwork.String()).Inc()
		util.APIRequestsTotal.WithLabelValues(method, path, "0").Inc()
		g.logger.Warn("Backend unreachable",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &APIError{Kind: KindNetwork, Message: msgNetwork}
	}
	defer resp.Body.Close()

	util.APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		util.APIErrorsTotal.WithLabelValues(KindNetwork.String()).Inc()
		return &APIError{Kind: KindNetwork, Message: msgNetwork}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return g.rejectCredential(resp.StatusCode, data)
	}

	if resp.StatusCode >= 500 {
		util.APIErrorsTotal.WithLabelValues(KindServer.String()).Inc()
		return &APIError{Kind: KindServer, Status: resp.StatusCode, Message: messageOr(data, msgServer)}
	}

	if resp.StatusCode >= 400 {
		util.APIErrorsTotal.WithLabelValues(KindValidation.String()).Inc()
		return &APIError{Kind: KindValidation, Status: resp.StatusCode, Message: messageOr(data, msgValidation)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		util.APIErrorsTotal.WithLabelValues(KindMalformed.String()).Inc()
		g.logger.Warn("Malformed backend response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &APIError{Kind: KindMalformed, Status: resp.StatusCode, Message: msgMalformed}
	}

	return nil
}

// rejectCredential handles the authentication-rejected class: the
// persisted session is cleared immediately and the registered hook runs
// so the rest of the client can leave the authenticated epoch.
func (g *Gateway) rejectCredential(status int, data []byte) error {
	util.APIErrorsTotal.WithLabelValues(KindAuth.String()).Inc()

	if err := g.sessions.Clear("credential_rejected"); err != nil {
		g.logger.Error("Failed to clear rejected session", zap.Error(err))
	}
	if g.onAuthReject != nil {
		g.onAuthReject()
	}

	return &APIError{Kind: KindAuth, Status: status, Message: messageOr(data, msgAuth)}
}

// messageOr extracts the backend's message field, falling back when the
// body is empty or not the documented error shape.
func messageOr(data []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}
	return fallback
}
