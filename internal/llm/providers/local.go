// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// CompletionRequest is a single bounded text-completion call.
type CompletionRequest struct {
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
}

// Provider is the narrow text-completion capability the rest of the system
// builds prompt wrappers on top of.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
	Configured() bool
}

// Upstream failure taxonomy. Handlers map these onto HTTP statuses.
var (
	ErrAuth       = errors.New("provider authentication failed")
	ErrPermission = errors.New("provider permission denied")
	ErrTimeout    = errors.New("provider request timed out")
	ErrNetwork    = errors.New("provider network failure")
)

// ProviderError carries a non-success upstream status and body.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%d): %s", e.StatusCode, e.Body)
}

// StatusFor translates a completion failure into an HTTP status code.
func StatusFor(err error) int {
	var pe *ProviderError
	switch {
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &pe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// LocalProvider is the fallback used when no API key is configured. It
// produces deterministic text so the surrounding features stay exercisable.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("no prompt provided")
	}
	return "[local-stub] " + strings.TrimSpace(req.Prompt), nil
}

func (l *LocalProvider) Name() string {
	return "local"
}

func (l *LocalProvider) Configured() bool {
	return false
}
