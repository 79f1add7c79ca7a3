package credentials

import (
	"strings"
	"testing"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	plain := "EAAB-very-secret-token"
	sealed, err := c.Encrypt(plain)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if sealed == plain || sealed == "" {
		t.Errorf("ciphertext looks unencrypted: %q", sealed)
	}

	got, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != plain {
		t.Errorf("round trip = %q, want %q", got, plain)
	}
}

func TestCipherEmptyPassthrough(t *testing.T) {
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	if sealed, _ := c.Encrypt(""); sealed != "" {
		t.Errorf("empty plaintext should stay empty, got %q", sealed)
	}
	if plain, _ := c.Decrypt(""); plain != "" {
		t.Errorf("empty ciphertext should stay empty, got %q", plain)
	}
}

func TestCipherNonceVariesPerCall(t *testing.T) {
	c, _ := NewCipher(testKey)
	a, _ := c.Encrypt("same input")
	b, _ := c.Encrypt("same input")
	if a == b {
		t.Error("two encryptions of the same plaintext must differ")
	}
}

func TestNewCipherRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"not hex", "zz", "not valid hex"},
		{"too short", "0001", "32 bytes"},
		{"too long", strings.Repeat("00", 33), "32 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCipher(tt.key)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("NewCipher(%q) error = %v, want containing %q", tt.key, err, tt.want)
			}
		})
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	c, _ := NewCipher(testKey)
	sealed, _ := c.Encrypt("secret")
	flip := "A"
	if sealed[0] == 'A' {
		flip = "B"
	}
	tampered := flip + sealed[1:]
	if _, err := c.Decrypt(tampered); err == nil {
		t.Error("tampered ciphertext must not decrypt")
	}
}
