package graphql

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/logger"
	"github.com/stephenstephen/review/pkg/validator"
)

// resolverError is surfaced as errors[].extensions.code.
type resolverError struct {
	code    string
	message string
	fields  map[string]string
}

func (e *resolverError) Error() string { return e.message }

func (e *resolverError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.code}
	if len(e.fields) > 0 {
		ext["fields"] = e.fields
	}
	return ext
}

// fail converts a service or guard error into a resolverError. Internal
// errors are logged and masked.
func (r *Resolver) fail(ctx context.Context, err error) error {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return &resolverError{code: "VALIDATION_ERROR", message: "request validation failed", fields: valErr.Fields()}
	}

	if apperrors.HTTPStatus(err) == http.StatusInternalServerError {
		l := logger.FromContext(ctx)
		if l == slog.Default() {
			l = r.logger
		}
		l.ErrorContext(ctx, "graphql internal error", slog.String("error", err.Error()))
		return &resolverError{code: apperrors.Code(err), message: "an internal error occurred"}
	}

	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	return &resolverError{code: apperrors.Code(err), message: msg}
}
