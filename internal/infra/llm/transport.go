package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"

	// maxErrorBody bounds how much of a failed response body ends up in an error message.
	maxErrorBody = 2048
)

// errorEnvelope covers both vendors' error bodies:
// Gemini {"error":{"code":400,"message":"...","status":"INVALID_ARGUMENT"}} and
// OpenAI-compatible {"error":{"message":"...","type":"...","code":"invalid_api_key"}}.
type errorEnvelope struct {
	Error struct {
		Message string          `json:"message"`
		Status  string          `json:"status"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

// postJSON sends payload as a JSON POST and decodes a 2xx body into out.
// Non-2xx responses become *ProviderError; transport failures wrap ErrNetwork.
func postJSON(ctx context.Context, client *http.Client, provider ProviderID, op, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s %s: marshal request: %w", provider, op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s %s: build request: %w", provider, op, err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return do(client, req, provider, op, out)
}

// getJSON issues a GET and discards the body; used by health checks.
func getJSON(ctx context.Context, client *http.Client, provider ProviderID, op, url string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s %s: build request: %w", provider, op, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return do(client, req, provider, op, nil)
}

func do(client *http.Client, req *http.Request, provider ProviderID, op string, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return networkError(provider, op, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(provider, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			Provider:   provider,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", provider, op, err)
	}
	return nil
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		msg := env.Error.Message
		code := strings.Trim(string(env.Error.Code), `"`)
		if code != "" && !isNumeric(code) {
			msg += " (" + code + ")"
		}
		if env.Error.Status != "" {
			msg += " [" + env.Error.Status + "]"
		}
		return msg
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
