package hash

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "typical password", password: "SecurePass123!"},
		{name: "short password", password: "abc"},
		{name: "multibyte password", password: "pässwörd"},
		{name: "beyond bcrypt input limit", password: strings.Repeat("x", 73), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := Hash(tt.password)
			if tt.wantErr {
				if err == nil {
					t.Error("Hash() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Hash() unexpected error = %v", err)
			}

			if digest == tt.password {
				t.Error("Hash() returned the plaintext")
			}
			cost, err := bcrypt.Cost([]byte(digest))
			if err != nil || cost != Cost {
				t.Errorf("bcrypt.Cost() = %d, %v, want %d", cost, err, Cost)
			}
			if err := Compare(digest, tt.password); err != nil {
				t.Errorf("Compare() on own digest = %v", err)
			}
		})
	}
}

func TestHash_Salted(t *testing.T) {
	first, err := Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if first == second {
		t.Error("two digests of the same password should differ")
	}
}

func TestCompare(t *testing.T) {
	password := "MySecurePassword123!"
	digest, err := Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name     string
		digest   string
		password string
		wantErr  error
	}{
		{name: "correct password", digest: digest, password: password},
		{name: "wrong password", digest: digest, password: "WrongPassword", wantErr: ErrMismatch},
		{name: "empty password", digest: digest, password: "", wantErr: ErrMismatch},
		{name: "case sensitive", digest: digest, password: strings.ToUpper(password), wantErr: ErrMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Compare(tt.digest, tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Compare() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompare_MalformedDigest(t *testing.T) {
	err := Compare("not-a-bcrypt-digest", "secret1")
	if err == nil || errors.Is(err, ErrMismatch) {
		t.Errorf("Compare() error = %v, want a digest format error", err)
	}
}

func BenchmarkHash(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Hash("BenchmarkPassword123!"); err != nil {
			b.Fatalf("Hash() error = %v", err)
		}
	}
}
