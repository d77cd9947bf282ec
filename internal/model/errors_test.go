package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAPIError_ImplementsError(t *testing.T) {
	apiErr := NewInvalidCredentialError()

	msg := apiErr.Error()
	if !strings.Contains(msg, ErrCodeInvalidCredential) {
		t.Errorf("Error() = %q, should contain code %q", msg, ErrCodeInvalidCredential)
	}
}

func TestAPIError_ErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("signup failed: %w", NewDuplicateIdentityError())

	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As should unwrap *APIError")
	}
	if apiErr.Code != ErrCodeDuplicateIdentity {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeDuplicateIdentity)
	}
}

func TestNewValidationFailedError_CarriesFields(t *testing.T) {
	fields := map[string]string{
		"email":    "メールアドレスの形式が正しくありません。",
		"password": "パスワードは8文字以上255文字以下で入力してください。",
	}

	apiErr := NewValidationFailedError(fields)

	if apiErr.Code != ErrCodeValidationFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeValidationFailed)
	}
	if apiErr.Category != "validation" {
		t.Errorf("category = %q, want %q", apiErr.Category, "validation")
	}
	if len(apiErr.Fields) != 2 {
		t.Errorf("fields count = %d, want 2", len(apiErr.Fields))
	}
	if apiErr.Fields["email"] == "" {
		t.Error("expected email field message")
	}
}

func TestNotFoundErrors_IncludePublicID(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		code string
	}{
		{"location", NewLocationNotFoundError("abc123def456"), ErrCodeLocationNotFound},
		{"journey", NewJourneyNotFoundError("abc123def456"), ErrCodeJourneyNotFound},
		{"log", NewLogNotFoundError("abc123def456"), ErrCodeLogNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %q, want %q", tt.err.Code, tt.code)
			}
			if !strings.Contains(tt.err.Message, "abc123def456") {
				t.Errorf("message %q should contain the public ID", tt.err.Message)
			}
			if tt.err.Category != "journal" {
				t.Errorf("category = %q, want %q", tt.err.Category, "journal")
			}
		})
	}
}
