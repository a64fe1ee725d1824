package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeInvalidInput, "bad room id: %s", "x/y"),
			want: "INVALID_INPUT: bad room id: x/y",
		},
		{
			name: "with cause",
			err:  Wrap(stderrors.New("dial tcp: refused"), ErrCodeNetwork, "fetching room"),
			want: "NETWORK_ERROR: fetching room: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsMatchesCodeThroughChain(t *testing.T) {
	inner := New(ErrCodeDocumentNotFound, "document %s", "abc")
	wrapped := fmt.Errorf("handler: %w", inner)

	if !Is(wrapped, ErrCodeDocumentNotFound) {
		t.Error("Is() = false for matching code through wrap chain")
	}
	if Is(wrapped, ErrCodeNetwork) {
		t.Error("Is() = true for non-matching code")
	}
	if Is(stderrors.New("plain"), ErrCodeNetwork) {
		t.Error("Is() = true for non-structured error")
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, ErrCodeStorage, "writing blob")

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"structured", New(ErrCodeUpstream, "daily returned 500"), ErrCodeUpstream},
		{"wrapped structured", fmt.Errorf("outer: %w", New(ErrCodeTimeout, "slow")), ErrCodeTimeout},
		{"plain", stderrors.New("nope"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}
