package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsSensitiveKeys(t *testing.T) {
	sanitized, ok := SanitizePayload(Fields{
		"pin":       "1234",
		"nonce":     "a1b2c3",
		"signature": "deadbeef",
		"userId":    "alice",
	}).(map[string]any)
	if !ok {
		t.Fatal("expected sanitized map")
	}

	for _, key := range []string{"pin", "nonce", "signature"} {
		if sanitized[key] != "******" {
			t.Errorf("expected %s redacted, got %v", key, sanitized[key])
		}
	}
	if sanitized["userId"] != "alice" {
		t.Errorf("expected userId untouched, got %v", sanitized["userId"])
	}
}

func TestSanitizeKeepsMiningFields(t *testing.T) {
	rendered := fieldsJSON(Fields{"index": 3, "digests": 2, "proof": 12345})
	if strings.Contains(rendered, "******") {
		t.Errorf("expected mining fields unredacted, got %s", rendered)
	}
	if !strings.Contains(rendered, "12345") {
		t.Errorf("expected proof value in output, got %s", rendered)
	}
}

func TestSanitizeRedactsNestedValues(t *testing.T) {
	sanitized, ok := SanitizePayload(map[string]any{
		"request": map[string]any{"artifact": "opaque", "amount": "100"},
	}).(map[string]any)
	if !ok {
		t.Fatal("expected sanitized map")
	}
	inner, ok := sanitized["request"].(map[string]any)
	if !ok {
		t.Fatal("expected nested map")
	}
	if inner["artifact"] != "******" {
		t.Errorf("expected artifact redacted, got %v", inner["artifact"])
	}
	if inner["amount"] != "100" {
		t.Errorf("expected amount untouched, got %v", inner["amount"])
	}
}
