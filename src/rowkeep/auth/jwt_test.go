package auth

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/bitswalk/rowkeep/src/common/errors"
)

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret"})

	token, err := svc.Issue("loader", []string{ScopeWrite}, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.Subject != "loader" || claims.TokenID == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.HasScope(ScopeWrite) || !claims.HasScope(ScopeRead) || claims.HasScope(ScopeAdmin) {
		t.Fatalf("unexpected scopes %v", claims.Scopes)
	}
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret"})
	other := NewTokenService(TokenConfig{Secret: "different"})

	foreign, _ := other.Issue("x", []string{ScopeRead}, time.Hour)

	past := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return past }
	expired, _ := svc.Issue("x", []string{ScopeRead}, time.Minute)
	svc.now = time.Now

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"tampered", foreign[:len(foreign)-2] + "xx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Validate(tt.token); !stderrors.Is(err, errors.ErrTokenInvalid) {
				t.Fatalf("expected invalid token, got %v", err)
			}
		})
	}
}

func TestTokenService_Disabled(t *testing.T) {
	svc := NewTokenService(TokenConfig{})
	if svc.Enabled() {
		t.Fatal("service without secret should be disabled")
	}
	if _, err := svc.Issue("x", nil, 0); err == nil {
		t.Fatal("expected issue to fail without secret")
	}
}

func TestTokenService_UnknownScope(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret"})
	_, err := svc.Issue("x", []string{"superuser"}, 0)
	if !stderrors.Is(err, errors.ErrValidationFailed) || !strings.Contains(err.Error(), "superuser") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClaims_HasScope(t *testing.T) {
	tests := []struct {
		scopes []string
		want   string
		ok     bool
	}{
		{[]string{ScopeRead}, ScopeRead, true},
		{[]string{ScopeRead}, ScopeWrite, false},
		{[]string{ScopeAdmin}, ScopeWrite, true},
		{nil, ScopeRead, false},
	}

	for _, tt := range tests {
		c := &Claims{Scopes: tt.scopes}
		if got := c.HasScope(tt.want); got != tt.ok {
			t.Errorf("HasScope(%v, %s) = %v, want %v", tt.scopes, tt.want, got, tt.ok)
		}
	}

	var nilClaims *Claims
	if nilClaims.HasScope(ScopeRead) {
		t.Fatal("nil claims should have no scope")
	}
}
