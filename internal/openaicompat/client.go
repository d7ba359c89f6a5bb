// Package openaicompat builds openai-go clients for OpenAI-compatible endpoints
// and classifies their failures.
package openaicompat

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Well-known OpenAI-compatible endpoints.
const (
	OpenAIBaseURL     = "https://api.openai.com/v1/"
	PerplexityBaseURL = "https://api.perplexity.ai/"
	GeminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
)

// NewClient returns a client with SDK-level retries disabled; retries are
// applied by the caller's resilience policy.
func NewClient(apiKey, baseURL string, opts ...option.RequestOption) openai.Client {
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	return openai.NewClient(append(base, opts...)...)
}

// Retryable reports whether a client error is transient:
// 408, 409, 429, 5xx responses, network timeouts and connection resets.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch code := apierr.StatusCode; {
		case code == http.StatusRequestTimeout, code == http.StatusConflict, code == http.StatusTooManyRequests:
			return true
		case code >= 500:
			return true
		default:
			return false
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	// DNS failures and refused connections point at a bad base URL and stay permanent.
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
