package model

import "testing"

func TestValidRole(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{RoleUser, true},
		{RoleVendor, true},
		{"admin", false},
		{"", false},
		{"User", false},
	}

	for _, tt := range tests {
		if got := ValidRole(tt.role); got != tt.expected {
			t.Errorf("ValidRole(%q) = %v, want %v", tt.role, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestActorAnonymous(t *testing.T) {
	if !(Actor{}).Anonymous() {
		t.Error("zero actor should be anonymous")
	}
	if (Actor{UserID: "u1", Role: RoleUser}).Anonymous() {
		t.Error("actor with user id should not be anonymous")
	}
}
