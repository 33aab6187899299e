package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/adolfohrq/prdgen/internal/api/ctxkeys"
	"github.com/adolfohrq/prdgen/internal/domain/chat"
	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/domain/settings"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// maxBodyBytes bounds request bodies; image payloads arrive base64 encoded inside JSON.
const maxBodyBytes = 16 << 20

// dataResponse wraps every successful payload. Data is null when a recipe produced nothing usable.
type dataResponse struct {
	Data any `json:"data"`
}

// requestError is a client error detected by a handler before calling a service.
type requestError struct {
	status  int
	message string
}

func (e requestError) Error() string { return e.message }

func badRequest(format string, args ...any) error {
	return requestError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func getUserID(ctx context.Context) (string, error) {
	userID, ok := ctxkeys.String(ctx, ctxkeys.UserID)
	if !ok {
		return "", requestError{status: http.StatusUnauthorized, message: "missing user context"}
	}
	return userID, nil
}

// decodeBody decodes a JSON body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// decodeOptionalBody is decodeBody for endpoints whose body may be absent.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, dataResponse{Data: v})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeFailure maps service errors onto HTTP statuses.
func writeFailure(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	writeError(w, status, message)
}

func statusFor(err error) (int, string) {
	var reqErr requestError
	var provErr *llm.ProviderError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.message
	case errors.Is(err, generation.ErrInvalidInput),
		errors.Is(err, chat.ErrUnknownPersona),
		errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, settings.ErrInvalidUser):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, chat.ErrConversationNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, chat.ErrConversationBusy):
		return http.StatusConflict, err.Error()
	case errors.Is(err, chat.ErrNothingToRefine):
		return http.StatusUnprocessableEntity, err.Error()
	case llm.IsConfigurationError(err):
		return http.StatusPreconditionFailed, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream provider timed out"
	case llm.IsAuthorizationError(err), errors.Is(err, llm.ErrNetwork),
		errors.Is(err, llm.ErrEmptyResponse), errors.As(err, &provErr):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
