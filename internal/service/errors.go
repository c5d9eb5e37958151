package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmynk/studytracker/internal/api"
	"github.com/mmynk/studytracker/internal/auth"
	"github.com/mmynk/studytracker/internal/storage"
)

// Error is a failure with a chosen HTTP status and client-facing message.
type Error struct {
	Status  int
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func badRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func invalidFields(details map[string]string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Validation failed.", Details: details}
}

func forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func notFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// withMessage replaces the default message for err with message, keeping the
// status err would map to.
func withMessage(err error, message string) *Error {
	status, _ := classify(err)
	return &Error{Status: status, Message: message, Err: err}
}

// classify maps sentinel errors to a status and default message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "Resource not found."
	case errors.Is(err, storage.ErrAlreadyApproved):
		return http.StatusConflict, "User is already approved."
	case errors.Is(err, storage.ErrLastAdmin):
		return http.StatusForbidden, "Cannot change the role of the only admin to 'user'."
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict, "Data conflict or validation error."
	case errors.Is(err, storage.ErrMissingField):
		return http.StatusBadRequest, "Missing required field."
	case errors.Is(err, storage.ErrInvalidReference):
		return http.StatusBadRequest, "Referenced record does not exist."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password."
	case errors.Is(err, auth.ErrNotApproved):
		return http.StatusForbidden, "Account not approved. Please contact an administrator."
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "Password must be at least 6 characters long."
	case errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusConflict, "Username already exists."
	case errors.Is(err, auth.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role. Must be 'user' or 'admin'."
	}
	return http.StatusInternalServerError, "Internal server error."
}

// writeError renders err as JSON. Unclassified errors are logged and reported
// as 500 with the underlying detail attached.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		status, message := classify(err)
		svcErr = &Error{Status: status, Message: message, Err: err}
	}

	if svcErr.Status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		details := svcErr.Details
		if details == nil && svcErr.Err != nil {
			details = map[string]string{"detail": svcErr.Err.Error()}
		}
		api.WriteError(w, svcErr.Status, svcErr.Message, details)
		return
	}

	if svcErr.Err != nil {
		slog.Debug("Request rejected", "path", r.URL.Path, "status", svcErr.Status, "error", svcErr.Err)
	}
	api.WriteError(w, svcErr.Status, svcErr.Message, svcErr.Details)
}
