package password

import (
	"strings"
	"testing"
)

func TestGetHash_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{
			name:     "plain password",
			password: "gardener42",
		},
		{
			name:     "password with symbols",
			password: "f1cus!Lyr@ta#2026",
		},
		{
			name:     "long passphrase",
			password: strings.Repeat("monstera-deliciosa-", 4),
		},
		{
			name:     "single character",
			password: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := GetHash(tt.password)
			if err != nil {
				t.Fatalf("GetHash() error = %v", err)
			}
			if hash == tt.password {
				t.Error("GetHash() returned the raw password")
			}
			if err := CompareHash(hash, tt.password); err != nil {
				t.Errorf("CompareHash() rejected the original password: %v", err)
			}
		})
	}
}

func TestCompareHash_Mismatches(t *testing.T) {
	hash, err := GetHash("gardener42")
	if err != nil {
		t.Fatalf("GetHash() error = %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
	}{
		{
			name:     "wrong password",
			hash:     hash,
			password: "gardener43",
		},
		{
			name:     "empty password",
			hash:     hash,
			password: "",
		},
		{
			name:     "garbage hash",
			hash:     "not-a-bcrypt-hash",
			password: "gardener42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CompareHash(tt.hash, tt.password); err == nil {
				t.Error("CompareHash() accepted a mismatch")
			}
		})
	}
}

func TestGetHash_Salted(t *testing.T) {
	first, err := GetHash("gardener42")
	if err != nil {
		t.Fatalf("GetHash() error = %v", err)
	}
	second, err := GetHash("gardener42")
	if err != nil {
		t.Fatalf("GetHash() error = %v", err)
	}
	if first == second {
		t.Error("hashing the same password twice produced identical hashes")
	}
}
