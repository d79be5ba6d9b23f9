package tokens_test

import (
	"testing"
	"time"

	"github.com/technosupport/ts-alert-relay/internal/tokens"
)

func TestTokenGeneration(t *testing.T) {
	mgr := tokens.NewManager("test-secret-key")

	token, err := mgr.GenerateToken("edge-gw-01", "plant-3", tokens.RoleIngest, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.Subject != "edge-gw-01" {
		t.Errorf("Expected subject edge-gw-01, got %s", claims.Subject)
	}
	if claims.SiteID != "plant-3" {
		t.Errorf("Expected SiteID plant-3, got %s", claims.SiteID)
	}
	if claims.Role != tokens.RoleIngest {
		t.Errorf("Expected role %s, got %s", tokens.RoleIngest, claims.Role)
	}
}

func TestInvalidSignature(t *testing.T) {
	mgr1 := tokens.NewManager("secret-1")
	mgr2 := tokens.NewManager("secret-2")

	token, _ := mgr1.GenerateToken("edge-gw-01", "plant-3", tokens.RoleIngest, time.Hour)
	_, err := mgr2.ValidateToken(token)
	if err == nil {
		t.Error("Expected validation error for wrong signature")
	}
}

func TestExpiredToken(t *testing.T) {
	mgr := tokens.NewManager("test-secret-key")

	token, _ := mgr.GenerateToken("edge-gw-01", "plant-3", tokens.RoleIngest, -time.Minute)
	_, err := mgr.ValidateToken(token)
	if err == nil {
		t.Error("Expected validation error for expired token")
	}
}
