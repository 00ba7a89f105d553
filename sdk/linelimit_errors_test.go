package sdk

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestLineLimitError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *LineLimitError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "input too large error",
			err:      NewInputTooLargeError(),
			wantCode: "INPUT_TOO_LARGE",
			wantMsg:  "input exceeds maximum size limit",
		},
		{
			name:     "invalid options error",
			err:      NewInvalidOptionsError("MaxBytes cannot be negative"),
			wantCode: "INVALID_OPTIONS",
			wantMsg:  "invalid options: MaxBytes cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if !strings.Contains(got, tt.wantCode) {
				t.Errorf("LineLimitError.Error() = %v, want to contain code %v", got, tt.wantCode)
			}
			if !strings.Contains(got, tt.wantMsg) {
				t.Errorf("LineLimitError.Error() = %v, want to contain message %v", got, tt.wantMsg)
			}
		})
	}
}

func TestLineLimitError_Is(t *testing.T) {
	wrapped := fmt.Errorf("packing: %w", NewInputTooLargeError())

	if !errors.Is(wrapped, ErrInputTooLarge) {
		t.Error("errors.Is should match ErrInputTooLarge by code")
	}
	if errors.Is(wrapped, ErrInvalidOptions) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestErrorMessageSafety(t *testing.T) {
	errMsg := NewInputTooLargeError().Error()
	for _, forbidden := range []string{"10MB", "10485760", "bytes", "size:", "limit:"} {
		if strings.Contains(errMsg, forbidden) {
			t.Errorf("Error message contains forbidden string %q: %v", forbidden, errMsg)
		}
	}
}
