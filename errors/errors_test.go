package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_NotRecognized(t *testing.T) {
	err := NotRecognized(0.6123)
	if err.Code != ErrCodeNotRecognized {
		t.Errorf("expected NOT_RECOGNIZED, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", err.HTTPStatus)
	}
	if err.Details["distance"] != 0.6123 {
		t.Errorf("expected distance detail, got %v", err.Details["distance"])
	}
	if err.Retryable {
		t.Error("NotRecognized should not be retryable")
	}
}

func TestAppError_NoEnrolledUsers_DistinctFromNotRecognized(t *testing.T) {
	empty := NoEnrolledUsers()
	rejected := NotRecognized(0.9)
	if empty.Code == rejected.Code {
		t.Error("NO_ENROLLED_USERS must be distinguishable from NOT_RECOGNIZED")
	}
	if empty.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", empty.HTTPStatus)
	}
}

func TestAppError_Internal_HidesCause(t *testing.T) {
	cause := fmt.Errorf("registry file corrupt")
	err := Internal(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
	resp := err.ToResponse()
	if resp.Error.Message != err.Message {
		t.Error("response message should match error message")
	}
	for _, v := range resp.Error.Details {
		if v == cause.Error() {
			t.Error("cause must not leak into the client response")
		}
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("inner")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", AlreadyExists("user"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed on wrapped error")
	}
	if appErr.Code != ErrCodeAlreadyExists {
		t.Errorf("expected ALREADY_EXISTS, got %s", appErr.Code)
	}

	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(NoEnrolledUsers()) != ErrCodeNoEnrolledUsers {
		t.Error("unexpected code")
	}
	if CodeOf(stderrors.New("plain")) != "" {
		t.Error("expected empty code for non-AppError")
	}
}

func TestWithDetailAndCause(t *testing.T) {
	err := Validation("username: is required").
		WithDetail("field", "username").
		WithCause(stderrors.New("bind failed"))
	if err.Details["field"] != "username" {
		t.Errorf("unexpected detail: %v", err.Details)
	}
	if err.Cause == nil {
		t.Error("expected cause to be set")
	}
}
