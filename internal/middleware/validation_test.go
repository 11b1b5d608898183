package middleware

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	if _, err := ValidateName("ab"); err == nil {
		t.Error("ValidateName() accepted a two-character name")
	}
	if _, err := ValidateName(strings.Repeat("x", 31)); err == nil {
		t.Error("ValidateName() accepted a 31-character name")
	}
	got, err := ValidateName("  Alice  ")
	if err != nil {
		t.Fatalf("ValidateName() error = %v", err)
	}
	if got != "Alice" {
		t.Errorf("ValidateName() = %q, want trimmed", got)
	}
}

func TestValidateNameCountsCharacters(t *testing.T) {
	// 12 characters but 36 bytes; the limit is characters, not bytes.
	if _, err := ValidateName(strings.Repeat("ワ", 12)); err != nil {
		t.Errorf("ValidateName() rejected a 12-character multibyte name: %v", err)
	}
	if _, err := ValidateName(strings.Repeat("ワ", 31)); err == nil {
		t.Error("ValidateName() accepted a 31-character name")
	}
}

func TestValidateEmail(t *testing.T) {
	if _, err := ValidateEmail("not-an-email"); err == nil {
		t.Error("ValidateEmail() accepted a bare string")
	}
	got, err := ValidateEmail("  Alice@Example.COM ")
	if err != nil {
		t.Fatalf("ValidateEmail() error = %v", err)
	}
	if got != "alice@example.com" {
		t.Errorf("ValidateEmail() = %q, want lowercased and trimmed", got)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("abc"); err == nil {
		t.Error("ValidatePassword() accepted a three-character password")
	}
	if err := ValidatePassword("abcd"); err != nil {
		t.Errorf("ValidatePassword() error = %v", err)
	}
}

func TestValidateGroupName(t *testing.T) {
	if _, err := ValidateGroupName("ab"); err == nil {
		t.Error("ValidateGroupName() accepted a two-character name")
	}
	if _, err := ValidateGroupName(strings.Repeat("x", 51)); err == nil {
		t.Error("ValidateGroupName() accepted a 51-character name")
	}
	if _, err := ValidateGroupName("weekend plans"); err != nil {
		t.Error("ValidateGroupName() rejected a valid name")
	}
	if _, err := ValidateGroupName(strings.Repeat("ワ", 20)); err != nil {
		t.Error("ValidateGroupName() rejected a 20-character multibyte name")
	}
}

func TestValidateContentCountsCharacters(t *testing.T) {
	if err := ValidateContent(strings.Repeat("ワ", 2000)); err != nil {
		t.Errorf("ValidateContent() rejected 2000 multibyte characters: %v", err)
	}
	if err := ValidateContent(strings.Repeat("a", 2001)); err == nil {
		t.Error("ValidateContent() accepted 2001 characters")
	}
}

func TestValidateObjectID(t *testing.T) {
	if _, err := ValidateObjectID("nope", "conversation ID"); err == nil {
		t.Fatal("ValidateObjectID() accepted a non-hex id")
	} else if err.Error() != "Invalid conversation ID" {
		t.Errorf("ValidateObjectID() message = %q", err.Error())
	}
	if _, err := ValidateObjectID("507f1f77bcf86cd799439011", "user ID"); err != nil {
		t.Errorf("ValidateObjectID() error = %v", err)
	}
}
