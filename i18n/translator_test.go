package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("required", nil); msg == "required" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("required", nil); msg == "this field is required" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Interpolation(t *testing.T) {
	if msg := T("too_short", map[string]string{"min": "3"}); msg != "must be at least 3 characters" {
		t.Fatalf("expected interpolated message, got %q", msg)
	}
	// unknown placeholders stay verbatim
	if msg := T("too_short", nil); msg != "must be at least {min} characters" {
		t.Fatalf("expected raw placeholder, got %q", msg)
	}
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected code fallback, got %q", msg)
	}
}

func TestSetTranslator_NilRestoresDefault(t *testing.T) {
	SetTranslator(nil)
	if msg := T("required", nil); msg == "" {
		t.Fatalf("expected default translator after nil, got empty message")
	}
}
