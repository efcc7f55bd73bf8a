package otp_test

import (
	"strings"
	"testing"

	"github.com/hayat-market/authgate/pkg/iam/otp"
)

func TestKeyLayout(t *testing.T) {
	key := otp.Key("john@example.com", otp.PurposeLogin, "123456")
	if key != "otp:john_example_com:login:123456" {
		t.Fatalf("unexpected key layout: %s", key)
	}
	if !strings.HasPrefix(key, otp.PairPrefix("john@example.com", otp.PurposeLogin)) {
		t.Fatalf("key %s does not start with its pair prefix", key)
	}
}

func TestCodeFromKey(t *testing.T) {
	key := otp.Key("owner", otp.PurposeRegister, "987654")
	if got := otp.CodeFromKey(key); got != "987654" {
		t.Fatalf("CodeFromKey(%s) = %q", key, got)
	}
	if got := otp.CodeFromKey("no-colons"); got != "" {
		t.Fatalf("CodeFromKey on junk = %q, want empty", got)
	}
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := otp.GenerateCode(6)
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q has length %d, want 6", code, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
		seen[code] = true
	}
	// 50 draws from a million-value space colliding down to a handful would
	// mean the generator is broken.
	if len(seen) < 40 {
		t.Fatalf("only %d distinct codes out of 50", len(seen))
	}
}

func TestPurposeValid(t *testing.T) {
	for _, p := range []otp.Purpose{
		otp.PurposeRegister, otp.PurposeLogin, otp.PurposeUpdateProfile,
		otp.PurposeForgotPassword, otp.PurposeVerifyContact,
	} {
		if !p.Valid() {
			t.Errorf("purpose %q should be valid", p)
		}
	}
	if otp.Purpose("delete_account").Valid() {
		t.Error("unknown purpose reported valid")
	}
}
