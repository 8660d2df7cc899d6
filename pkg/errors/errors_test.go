package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/skillsenselab/tina-api/pkg/errors"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *apperrors.AppError
		wantCode   apperrors.ErrorCode
		wantStatus int
	}{
		{"validation", apperrors.Validation("bad"), apperrors.ErrCodeInvalidInput, http.StatusBadRequest},
		{"forbidden", apperrors.Forbidden("nee"), apperrors.ErrCodeForbidden, http.StatusForbidden},
		{"internal", apperrors.Internal(errors.New("boom")), apperrors.ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestInternal_CarriesCauseMessage(t *testing.T) {
	err := apperrors.Internal(errors.New("Fout bij transcriptie: ffmpeg ontbreekt"))
	if err.Message != "Fout bij transcriptie: ffmpeg ontbreekt" {
		t.Fatalf("internal errors must surface the cause message, got %q", err.Message)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := apperrors.Internal(cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("context: %w", err)
	var appErr *apperrors.AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("expected errors.As to find the AppError")
	}
	if appErr.Code != apperrors.ErrCodeInternal {
		t.Errorf("unexpected code: %s", appErr.Code)
	}
}

func TestToResponse(t *testing.T) {
	err := apperrors.Forbidden("Kon API-sleutel niet valideren")
	resp := err.ToResponse()

	if resp.Error.Code != apperrors.ErrCodeForbidden {
		t.Errorf("unexpected code: %s", resp.Error.Code)
	}
	if resp.Error.Message != "Kon API-sleutel niet valideren" {
		t.Errorf("unexpected message: %q", resp.Error.Message)
	}
	if resp.Error.Retryable {
		t.Error("forbidden must not be retryable")
	}
}

func TestRetryableDetection(t *testing.T) {
	timeout := apperrors.New(apperrors.ErrCodeTimeout, "te traag", http.StatusGatewayTimeout)
	if !timeout.Retryable {
		t.Error("timeouts are retryable")
	}
	if apperrors.Validation("x").Retryable {
		t.Error("validation errors are not retryable")
	}
}
