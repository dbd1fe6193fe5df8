package apperr

import (
	"errors"
	"testing"
)

func TestWrapPreservesCodeOfAnAppError(t *testing.T) {
	original := WindowOutOfRange("baseline window exceeds trace")
	wrapped := Wrap(original, "baseline_rmp failed")

	if GetCode(wrapped) != CodeWindowOutOfRange {
		t.Fatalf("code = %q, want %q", GetCode(wrapped), CodeWindowOutOfRange)
	}
	if !IsAppError(wrapped) {
		t.Fatal("expected Wrap to produce an *AppError")
	}
	if !errors.Is(wrapped, original) {
		t.Fatal("expected errors.Is to see through the wrap via Unwrap")
	}
}

func TestWrapOfAPlainErrorGetsInternalErrorCode(t *testing.T) {
	wrapped := Wrap(errors.New("disk full"), "loading config")
	if GetCode(wrapped) != CodeInternalError {
		t.Fatalf("code = %q, want %q", GetCode(wrapped), CodeInternalError)
	}
}

func TestWrapOfNilReturnsNil(t *testing.T) {
	if Wrap(nil, "anything") != nil {
		t.Fatal("expected Wrap(nil, ...) to return nil")
	}
	if Wrapf(nil, "anything %d", 1) != nil {
		t.Fatal("expected Wrapf(nil, ...) to return nil")
	}
	if WithCode(CodeFitFailed, nil) != nil {
		t.Fatal("expected WithCode(_, nil) to return nil")
	}
}

func TestWithCodeRewritesCodeButKeepsMessage(t *testing.T) {
	original := errors.New("singular matrix")
	recoded := WithCode(CodeSingularRegression, original)
	if GetCode(recoded) != CodeSingularRegression {
		t.Fatalf("code = %q, want %q", GetCode(recoded), CodeSingularRegression)
	}
	if recoded.Error() != "singular matrix" {
		t.Fatalf("message = %q, want %q", recoded.Error(), "singular matrix")
	}
}

func TestGetCodeOfANonAppErrorIsUnknown(t *testing.T) {
	if got := GetCode(errors.New("plain")); got != "UNKNOWN" {
		t.Fatalf("GetCode of a plain error = %q, want UNKNOWN", got)
	}
}

func TestMissingParameterMessageNamesTheParameter(t *testing.T) {
	err := MissingParameter("baseline_start")
	if err.Code != CodeMissingParameter {
		t.Fatalf("code = %q, want %q", err.Code, CodeMissingParameter)
	}
	want := `missing required parameter "baseline_start"`
	if err.Message != want {
		t.Fatalf("message = %q, want %q", err.Message, want)
	}
}
