package util

import (
	"net/http"
	"testing"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("u-123", "member", "secret")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	userID, role, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if userID != "u-123" || role != "member" {
		t.Fatalf("claims = (%q, %q), want (u-123, member)", userID, role)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("u-123", "admin", "secret")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, _, err := ParseJWT(token, "other"); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}

func TestExtractToken(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	if got := ExtractToken(r); got != "" {
		t.Fatalf("no header: got %q", got)
	}

	r.Header.Set("Authorization", "Bearer abc.def.ghi")
	if got := ExtractToken(r); got != "abc.def.ghi" {
		t.Fatalf("got %q, want abc.def.ghi", got)
	}

	r.Header.Set("Authorization", "Basic abc")
	if got := ExtractToken(r); got != "" {
		t.Fatalf("non-bearer scheme: got %q", got)
	}
}
