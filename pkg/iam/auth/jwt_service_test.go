package auth_test

import (
	"testing"
	"time"

	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam/auth"
)

func TestIssueAndVerify(t *testing.T) {
	svc := auth.NewJWTService("secret", "authgate")

	token, err := svc.Issue(map[string]any{"username": "john"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Username != "john" {
		t.Fatalf("username = %q", claims.Username)
	}
	if remaining := claims.RemainingTTL(); remaining <= 0 || remaining > time.Hour {
		t.Fatalf("remaining TTL = %v", remaining)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc := auth.NewJWTService("secret", "authgate")

	token, err := svc.Issue(map[string]any{"username": "john"}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = svc.Verify(token)
	if !errx.IsCode(err, auth.CodeExpiredToken) {
		t.Fatalf("expired token = %v, want expired-token", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := auth.NewJWTService("secret-a", "authgate")
	verifier := auth.NewJWTService("secret-b", "authgate")

	token, _ := issuer.Issue(map[string]any{"username": "john"}, time.Hour)

	_, err := verifier.Verify(token)
	if !errx.IsCode(err, auth.CodeInvalidSignature) {
		t.Fatalf("wrong secret = %v, want invalid-signature", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	svc := auth.NewJWTService("secret", "authgate")

	_, err := svc.Verify("not-a-token")
	if !errx.IsCode(err, auth.CodeMalformedToken) {
		t.Fatalf("garbage token = %v, want malformed-token", err)
	}
}

func TestVerifyMissingUsername(t *testing.T) {
	svc := auth.NewJWTService("secret", "authgate")

	token, _ := svc.Issue(map[string]any{"role": "anon"}, time.Hour)

	_, err := svc.Verify(token)
	if !errx.IsCode(err, auth.CodeMalformedToken) {
		t.Fatalf("payload without username = %v, want malformed-token", err)
	}
}
