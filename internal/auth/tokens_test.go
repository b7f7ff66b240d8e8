package auth

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	accountID := primitive.NewObjectID()

	token, err := issueAccessToken(accountID, "ada@example.com", "customer", "secret", time.Minute)
	if err != nil {
		t.Fatalf("issueAccessToken returned error: %v", err)
	}

	claims, err := ParseAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}

	parsed, err := AccountIDFromClaims(claims)
	if err != nil {
		t.Fatalf("AccountIDFromClaims returned error: %v", err)
	}
	if parsed != accountID {
		t.Fatalf("expected account id %s, got %s", accountID.Hex(), parsed.Hex())
	}
	if role, _ := claims["role"].(string); role != "customer" {
		t.Fatalf("expected role customer, got %q", role)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := issueAccessToken(primitive.NewObjectID(), "ada@example.com", "customer", "secret", time.Minute)
	if err != nil {
		t.Fatalf("issueAccessToken returned error: %v", err)
	}

	if _, err := ParseAccessToken(token, "other-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		valid  bool
	}{
		{"Bearer abc123", "abc123", true},
		{"bearer abc123", "abc123", true},
		{"  Bearer abc123  ", "abc123", true},
		{"", "", false},
		{"abc123", "", false},
		{"Token abc123", "", false},
		{"Bearer", "", false},
	}

	for _, tc := range cases {
		got, err := BearerToken(tc.header)
		if tc.valid {
			if err != nil {
				t.Fatalf("header %q: unexpected error %v", tc.header, err)
			}
			if got != tc.want {
				t.Fatalf("header %q: expected %q, got %q", tc.header, tc.want, got)
			}
			continue
		}
		if err == nil {
			t.Fatalf("header %q: expected error", tc.header)
		}
	}
}

func TestAccountIDFromClaimsRejectsBadClaim(t *testing.T) {
	cases := []map[string]interface{}{
		{},
		{"userId": ""},
		{"userId": "not-a-hex-id"},
		{"userId": 42},
	}

	for _, claims := range cases {
		if _, err := AccountIDFromClaims(claims); err == nil {
			t.Fatalf("claims %v: expected error", claims)
		}
	}
}
