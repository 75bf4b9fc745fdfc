package utils

import (
	"regexp"
	"strings"
	"testing"
)

func TestHashData(t *testing.T) {
	h1 := HashData("alice@example.com")
	h2 := HashData("alice@example.com")
	h3 := HashData("bob@example.com")

	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
	if h1 != h2 {
		t.Fatalf("equal inputs must hash equal: %s vs %s", h1, h2)
	}
	if h1 == h3 {
		t.Fatalf("different inputs hashed equal")
	}
}

func TestGenerateAnonymousID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateAnonymousID()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(id, "ANON-") {
			t.Fatalf("expected ANON- prefix, got %s", id)
		}
		if len(id) != len("ANON-")+32 {
			t.Fatalf("expected 32 hex chars after prefix, got %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate anonymous id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateOTP(t *testing.T) {
	otpPattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 1000; i++ {
		otp, err := GenerateOTP()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !otpPattern.MatchString(otp) {
			t.Fatalf("expected 6-digit code, got %q", otp)
		}
		if otp < "100000" || otp > "999999" {
			t.Fatalf("OTP %q out of range", otp)
		}
	}
}

func TestGenerateContactTraceToken(t *testing.T) {
	hexPattern := regexp.MustCompile(`^[0-9a-f]{32}$`)
	token, err := GenerateContactTraceToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hexPattern.MatchString(token) {
		t.Fatalf("expected 32 lowercase hex chars, got %q", token)
	}
}

func TestGeneratePaymentReference(t *testing.T) {
	refPattern := regexp.MustCompile(`^PAY-[0-9]{14}-[0-9A-F]{8}$`)
	ref, err := GeneratePaymentReference()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !refPattern.MatchString(ref) {
		t.Fatalf("unexpected payment reference format: %q", ref)
	}
}

func TestCardType(t *testing.T) {
	cases := []struct {
		number string
		want   string
	}{
		{"4111111111111111", "Visa"},
		{"5500000000000004", "Mastercard"},
		{"340000000000009", "American Express"},
		{"6011000000000004", "Unknown"},
	}

	for _, tc := range cases {
		if got := CardType(tc.number); got != tc.want {
			t.Fatalf("CardType(%s) = %s, want %s", tc.number, got, tc.want)
		}
	}
}

func TestCardLast4(t *testing.T) {
	if got := CardLast4("4111111111111111"); got != "1111" {
		t.Fatalf("expected 1111, got %s", got)
	}
	if got := CardLast4("42"); got != "42" {
		t.Fatalf("expected short input returned as-is, got %s", got)
	}
}
