package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/validator"
)

// errorEnvelope mirrors the {"error": {...}} body written by httputil.
type errorEnvelope struct {
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// ParseResponseError turns a non-2xx response into an error that keeps the
// server's code and status. Validation failures with field details come back
// as *validator.ValidationError. The body is consumed and closed.
func ParseResponseError(resp *http.Response, service string) error {
	defer drain(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}

	var env errorEnvelope
	if json.Unmarshal(raw, &env) != nil || env.Error == nil {
		return &apperrors.AppError{
			Code:    codeForStatus(resp.StatusCode),
			Message: fmt.Sprintf("%s returned status %d", service, resp.StatusCode),
			Status:  resp.StatusCode,
			Err:     sentinelForStatus(resp.StatusCode),
		}
	}

	if len(env.Error.Fields) > 0 {
		return validator.FieldErrors(env.Error.Fields)
	}
	code := env.Error.Code
	if code == "" {
		code = codeForStatus(resp.StatusCode)
	}
	return &apperrors.AppError{
		Code:    code,
		Message: env.Error.Message,
		Status:  resp.StatusCode,
		Err:     sentinelForStatus(resp.StatusCode),
	}
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidInput
	case http.StatusConflict:
		return apperrors.ErrConflict
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusServiceUnavailable:
		return apperrors.ErrServiceUnavail
	default:
		return apperrors.ErrInternal
	}
}

func codeForStatus(status int) string {
	return apperrors.Code(sentinelForStatus(status))
}

// IsClientError reports whether status is 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
