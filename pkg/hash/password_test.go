package hash

import (
	"strings"
	"testing"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "SecurePass123!",
		},
		{
			name:     "minimum length password",
			password: "Pass123!",
		},
		{
			name:     "password too short",
			password: "short",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := Hash(tt.password)

			if tt.wantErr {
				if err == nil {
					t.Error("Hash() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if hash == tt.password {
				t.Error("Hash() returned unhashed password")
			}
			if !strings.HasPrefix(hash, "$2a$12$") {
				t.Errorf("Hash() invalid bcrypt format, got = %s", hash[:10])
			}
		})
	}
}

func TestCompare(t *testing.T) {
	password := "MySecurePassword123!"
	hash, err := Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := Compare(hash, password); err != nil {
		t.Errorf("Compare() unexpected error = %v", err)
	}
	if err := Compare(hash, "WrongPassword"); err == nil {
		t.Error("Compare() accepted wrong password")
	}
	if err := Compare(hash, strings.ToUpper(password)); err == nil {
		t.Error("Compare() is not case sensitive")
	}
}

func TestHashSalted(t *testing.T) {
	password := "SamePassword123!"

	hash1, err := Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash1 == hash2 {
		t.Error("Hash() should generate different hashes for same password (salt)")
	}
}
