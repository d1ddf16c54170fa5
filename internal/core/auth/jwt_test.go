package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestJWTer(ttl time.Duration) *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "library", TTL: ttl}
}

func TestIssueAndParse(t *testing.T) {
	j := newTestJWTer(24 * time.Hour)

	token, err := j.Issue(42, "alice", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := j.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	if claims.Role != "user" {
		t.Errorf("Role = %q, want user", claims.Role)
	}
}

func TestParseExpired(t *testing.T) {
	// 负 TTL 加上 60s leeway 仍要过期
	j := newTestJWTer(-2 * time.Minute)
	token, err := j.Issue(1, "bob", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := j.Parse(token); err == nil {
		t.Fatal("Parse accepted an expired token")
	}
}

func TestParseWrongSecret(t *testing.T) {
	j := newTestJWTer(time.Hour)
	token, err := j.Issue(1, "bob", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other := &JWTer{Secret: []byte("other-secret"), Issuer: "library", TTL: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Fatal("Parse accepted a token signed with a different secret")
	}
}

func TestParseTampered(t *testing.T) {
	j := newTestJWTer(time.Hour)
	token, err := j.Issue(1, "bob", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	// 篡改 payload 段
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := j.Parse(tampered); err == nil {
		t.Fatal("Parse accepted a tampered token")
	}
}

func TestParseRejectsOtherAlg(t *testing.T) {
	j := newTestJWTer(time.Hour)
	// alg=none 签出的 token 必须被拒
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := j.Parse(raw); err == nil {
		t.Fatal("Parse accepted an unsigned token")
	}
}
