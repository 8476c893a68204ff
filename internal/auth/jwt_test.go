package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, "scheduler", RoleOperator, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "scheduler" {
		t.Errorf("expected subject 'scheduler', got %q", claims.Subject)
	}
	if !claims.HasRole(RoleOperator) {
		t.Errorf("expected role operator, got %q", claims.Role)
	}
	if claims.HasRole(RoleViewer, RoleService) {
		t.Error("expected operator not to match other roles")
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", "scheduler", RoleOperator, time.Hour)

	if _, err := ValidateToken("secret2", token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, _ := GenerateToken("secret", "scheduler", RoleOperator, time.Nanosecond)
	time.Sleep(10 * time.Millisecond)

	if _, err := ValidateToken("secret", token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	if _, err := ValidateToken("secret", "not-a-token"); err == nil {
		t.Error("expected error for invalid token")
	}
}
