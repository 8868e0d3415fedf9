package auth

import (
	"errors"
	"testing"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	user := &User{
		ID:       "usr-001",
		Username: "alice",
		Role:     RoleReporter,
	}
	secret := "test-secret-key-for-jwt-signing"

	token, err := GenerateAccessToken(user, secret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "alice")
	}

	if claims.Role != RoleReporter {
		t.Errorf("Role = %q, want %q", claims.Role, RoleReporter)
	}

	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	user := &User{ID: "usr-001", Username: "alice", Role: RoleReporter}

	token, err := GenerateAccessToken(user, "correct-secret", 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ParseToken(token, "wrong-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() with wrong secret error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("not-a-jwt", "secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() with garbage error = %v, want ErrTokenInvalid", err)
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"alice", true},
		{"alice.bob-1_x", true},
		{"", false},
		{"has space", false},
		{"почта", false},
	}

	for _, tt := range tests {
		if got := IsValidUsername(tt.input); got != tt.want {
			t.Errorf("IsValidUsername(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
