package common

import (
	"encoding/hex"
	"testing"
)

// ---------- MakeRandHexString ----------

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	s, err := MakeRandHexString(ResetTokenSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != ResetTokenSize*2 {
		t.Fatalf("expected hex length %d, got %d", ResetTokenSize*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

// ---------- GenerateNumericCode ----------

func TestGenerateNumericCode_DigitsOnly(t *testing.T) {
	for i := 0; i < 100; i++ {
		c, err := GenerateNumericCode(OTPLength)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(c) != OTPLength {
			t.Fatalf("expected %d digits, got %q", OTPLength, c)
		}
		for _, r := range c {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit %q in code %q", r, c)
			}
		}
	}
}

func TestGenerateNumericCode_EntropyHint(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		c, _ := GenerateNumericCode(OTPLength)
		seen[c] = struct{}{}
	}
	if len(seen) < 2 {
		t.Logf("warning: 50 codes produced %d distinct values; extremely unlikely", len(seen))
	}
}

// ---------- HashToken / NormalizeEmail ----------

func TestHashToken_StableAndHex(t *testing.T) {
	a := HashToken("abc")
	b := HashToken("abc")
	if a != b {
		t.Fatalf("digest not stable: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if HashToken("abd") == a {
		t.Fatalf("different inputs share a digest")
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  U@X.com ":   "u@x.com",
		"user@ex.org":  "user@ex.org",
		"MiXeD@Ex.ORG": "mixed@ex.org",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestNormalizeUserName(t *testing.T) {
	cases := map[string]string{
		" Alice ": "alice",
		"bob_42":  "bob_42",
		"":        "",
	}
	for in, want := range cases {
		if got := NormalizeUserName(in); got != want {
			t.Fatalf("NormalizeUserName(%q) = %q, want %q", in, got, want)
		}
	}
}
