package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_New(t *testing.T) {
	err := New(DomainRepository, "test_code", http.StatusConflict, "test message")

	if err.Domain != DomainRepository {
		t.Fatalf("expected domain %s, got %s", DomainRepository, err.Domain)
	}
	if err.Code != "test_code" {
		t.Fatalf("expected code test_code, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
}

func TestError_Wrap(t *testing.T) {
	cause := stderrors.New("disk I/O error")
	err := Wrap(cause, DomainDatabase, "query_failed", http.StatusInternalServerError, "query failed")

	if err.Unwrap() != cause {
		t.Fatal("expected wrapped error to be returned by Unwrap")
	}
	if got := err.Error(); got != "database.query_failed: query failed: disk I/O error" {
		t.Fatalf("unexpected error string: %s", got)
	}
}

func TestError_WithCauseKeepsSentinelIdentity(t *testing.T) {
	cause := stderrors.New("no such table: tributes")
	wrapped := ErrQueryFailed.WithCause(cause)

	if ErrQueryFailed.Unwrap() != nil {
		t.Fatal("sentinel must not be mutated by WithCause")
	}
	if !stderrors.Is(wrapped, ErrQueryFailed) {
		t.Fatal("expected wrapped error to match its sentinel")
	}
	if !stderrors.Is(wrapped, cause) {
		t.Fatal("expected wrapped error to match its cause")
	}
	if stderrors.Is(wrapped, ErrRecordNotFound) {
		t.Fatal("different codes must not match")
	}
}

func TestError_WithMessagef(t *testing.T) {
	custom := ErrTableNotFound.WithMessagef("Table %q not found", "tributes")

	if custom.Message != `Table "tributes" not found` {
		t.Fatalf("unexpected message: %s", custom.Message)
	}
	if ErrTableNotFound.Message != "Table not found" {
		t.Fatal("sentinel message must not change")
	}
}

func TestGetters(t *testing.T) {
	err := fmt.Errorf("loading row: %w", ErrRecordAmbiguous)

	if GetHTTPStatus(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %d", GetHTTPStatus(err))
	}
	if GetCode(err) != "ambiguous" {
		t.Fatalf("expected ambiguous, got %s", GetCode(err))
	}
	if GetDomain(err) != DomainRepository {
		t.Fatalf("expected repository domain, got %s", GetDomain(err))
	}

	plain := stderrors.New("plain")
	if GetHTTPStatus(plain) != 500 || GetCode(plain) != "" || GetDomain(plain) != "" {
		t.Fatal("plain errors should map to defaults")
	}
}

func TestNewResponse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", ErrRecordNotFound, "repository.not_found"},
		{"wrapped", fmt.Errorf("ctx: %w", ErrEmptyFilter), "repository.empty_filter"},
		{"plain", stderrors.New("boom"), "internal.internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewResponse(tt.err).Error; got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
