package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidViewMode, "unknown view mode: %s", "matrix"), "INVALID_VIEW_MODE: unknown view mode: matrix"},
		{Wrap(ErrCodeNetwork, errors.New("connection refused"), "GET %s", "/orgs/42"), "NETWORK_ERROR: GET /orgs/42: connection refused"},
		{EmptyData("42"), `EMPTY_DATA: organization "42" has no hierarchy data`},
		{Structural("duplicate node id %q", "B"), `STRUCTURAL_INTEGRITY: duplicate node id "B"`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch")
	if errors.Unwrap(err) != cause || !errors.Is(err, cause) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestIs(t *testing.T) {
	fetch := Wrap(ErrCodeFetchFailed, New(ErrCodeTimeout, "inner"), "outer")
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"same code", New(ErrCodeInvalidInput, "x"), ErrCodeInvalidInput, true},
		{"other code", New(ErrCodeInvalidInput, "x"), ErrCodeNetwork, false},
		{"outer of chain", fetch, ErrCodeFetchFailed, true},
		{"inner of chain", fetch, ErrCodeTimeout, true},
		{"behind fmt wrap", fmt.Errorf("render: %w", New(ErrCodeRenderUnavailable, "x")), ErrCodeRenderUnavailable, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("layout: %w", Structural("cycle at %s", "C"))
	if got := GetCode(wrapped); got != ErrCodeStructural {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeStructural)
	}
	if got := UserMessage(wrapped); got != "cycle at C" {
		t.Errorf("UserMessage = %q, want the bare message", got)
	}

	plain := errors.New("plain error")
	if got := GetCode(plain); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %q, want empty", got)
	}
	if got := UserMessage(plain); got != "plain error" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestFetchError(t *testing.T) {
	reset := FetchError("42", errors.New("connection reset"))
	if !Is(reset, ErrCodeFetchFailed) || Is(reset, ErrCodeTimeout) {
		t.Errorf("transport failure tagged as %v", reset)
	}

	late := FetchError("42", context.DeadlineExceeded)
	if !Is(late, ErrCodeFetchFailed) || !Is(late, ErrCodeTimeout) {
		t.Errorf("deadline failure not tagged TIMEOUT: %v", late)
	}
	if !errors.Is(late, context.DeadlineExceeded) {
		t.Error("deadline cause lost")
	}
	if got := UserMessage(late); got != `load hierarchy for organization "42"` {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestRenderUnavailable(t *testing.T) {
	cause := errors.New("exec: rsvg-convert: not found")
	err := RenderUnavailable("pdf", "install librsvg", cause)
	if err.Code != ErrCodeRenderUnavailable || err.Message != "pdf backend unavailable: install librsvg" {
		t.Errorf("RenderUnavailable = %+v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause lost")
	}
}
