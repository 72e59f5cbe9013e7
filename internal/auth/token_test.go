package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	iss, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token, expiresAt, err := iss.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiration, got %v", expiresAt)
	}

	subject, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "user-42" {
		t.Fatalf("unexpected subject: %s", subject)
	}
}

func TestVerifyZeroTTLIsExpired(t *testing.T) {
	iss, err := NewIssuer("test-secret", 0)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := iss.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := iss.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyExpiredByClock(t *testing.T) {
	now := time.Now()
	iss, err := NewIssuer("test-secret", time.Minute, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := iss.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := iss.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issA, err := NewIssuer("secret-one", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	issB, err := NewIssuer("secret-two", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token, _, err := issA.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issB.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyMalformedInput(t *testing.T) {
	iss, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d", "!!!.???.###"} {
		if _, err := iss.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("   ", time.Hour); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestContextRoundTrip(t *testing.T) {
	principal := Principal{ID: "user-7", Role: RoleAdmin, Username: "ada", Email: "ada@example.com"}
	ctx := ContextWithPrincipal(context.Background(), principal)

	got, ok := PrincipalFromContext(ctx)
	if !ok {
		t.Fatal("expected principal in context")
	}
	if got != principal {
		t.Fatalf("principal mismatch: %+v", got)
	}
	if !got.IsAdmin() {
		t.Fatal("expected admin")
	}

	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatal("expected no principal in fresh context")
	}
}
