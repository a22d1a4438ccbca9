package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		publicMsg string
		fatal     bool
		retryable bool
	}{
		{code: CodeValidation, publicMsg: "validation failed"},
		{code: CodeInvalidItemName, publicMsg: "Invalid item name"},
		{code: CodeInvalidTransactionKind, publicMsg: "invalid transaction kind", fatal: true},
		{code: CodeNotFound, publicMsg: "Not found"},
		{code: CodePersistence, publicMsg: "ledger store unavailable", retryable: true},
		{code: CodeLockTimeout, publicMsg: "item is busy", retryable: true},
		{code: CodeInternal, publicMsg: "internal error", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Fatal != tt.fatal {
			t.Fatalf("code %s expected fatal %v got %v", tt.code, tt.fatal, meta.Fatal)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.PublicMessage != "internal error" {
		t.Fatalf("expected internal metadata, got %+v", meta)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodePersistence, cause, "append entry")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodePersistence {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if wrapped.Error() != "PERSISTENCE_ERROR: append entry: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeNotFound, "no entry")
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestCodeHelpersFollowWrappedChains(t *testing.T) {
	inner := New(CodeInvalidTransactionKind, "kind refunds")
	outer := fmt.Errorf("append: %w", inner)

	if !IsCode(outer, CodeInvalidTransactionKind) {
		t.Fatalf("expected IsCode to see through fmt wrapping")
	}
	if !IsFatal(outer) {
		t.Fatalf("invalid transaction kind must be fatal")
	}
	if IsFatal(New(CodePersistence, "db down")) {
		t.Fatalf("persistence errors are per-item failures, not fatal")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("untyped errors should map to internal")
	}
	if IsCode(nil, CodeInternal) || IsFatal(nil) {
		t.Fatalf("nil errors carry no code")
	}
}
