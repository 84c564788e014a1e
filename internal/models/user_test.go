package models

import "testing"

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{"name set", User{Name: "Ada Lovelace", Slug: "ada"}, "Ada Lovelace"},
		{"falls back to slug", User{Slug: "ada"}, "ada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProfilePatch_IsEmpty(t *testing.T) {
	bio := "hello"
	if !(&ProfilePatch{}).IsEmpty() {
		t.Error("empty patch should report IsEmpty() = true")
	}
	if (&ProfilePatch{Bio: &bio}).IsEmpty() {
		t.Error("patch with bio should report IsEmpty() = false")
	}
}
