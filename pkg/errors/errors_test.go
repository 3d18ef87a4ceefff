package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestConflict(t *testing.T) {
	err := Conflict("range no longer available")

	if err.Code != CodeConflict {
		t.Errorf("expected code %s, got %s", CodeConflict, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
}

func TestHoldExpired(t *testing.T) {
	err := HoldExpired("hold expired")

	if err.Code != CodeHoldExpired {
		t.Errorf("expected code %s, got %s", CodeHoldExpired, err.Code)
	}
	if err.HTTPStatus != http.StatusGone {
		t.Errorf("expected status %d, got %d", http.StatusGone, err.HTTPStatus)
	}
}

func TestNotConfigured(t *testing.T) {
	err := NotConfigured("no slots exist for this date")

	if err.Code != CodeNotConfigured {
		t.Errorf("expected code %s, got %s", CodeNotConfigured, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("storage failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestAsAppError_PassThrough(t *testing.T) {
	original := Conflict("taken")
	got := AsAppError(original)

	if got != original {
		t.Error("expected AsAppError to return the original AppError")
	}
}

func TestAsAppError_WrapsUnknown(t *testing.T) {
	got := AsAppError(errors.New("boom"))

	if got.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, got.Code)
	}
}

func TestWithDetails(t *testing.T) {
	err := NotFoundWithID("Facility", "abc123")

	if err.Details["id"] != "abc123" {
		t.Errorf("expected id detail 'abc123', got %v", err.Details["id"])
	}
}
