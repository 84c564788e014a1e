package models

import "testing"

func TestIsPlatformType(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		expected bool
	}{
		{"regular", PlatformRegular, true},
		{"instagram", PlatformInstagram, true},
		{"youtube", PlatformYouTube, true},
		{"empty", "", false},
		{"unknown", "myspace", false},
		{"wrong case", "Instagram", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPlatformType(tt.typ); got != tt.expected {
				t.Errorf("IsPlatformType(%q) = %v, want %v", tt.typ, got, tt.expected)
			}
		})
	}
}

func TestLink_IconName(t *testing.T) {
	custom := "star"
	empty := ""

	tests := []struct {
		name     string
		link     Link
		expected string
	}{
		{"explicit icon wins", Link{Type: PlatformTwitter, Icon: &custom}, "star"},
		{"social falls back to type", Link{Type: PlatformTikTok}, "tiktok"},
		{"empty icon falls back to type", Link{Type: PlatformFacebook, Icon: &empty}, "facebook"},
		{"regular has no icon", Link{Type: PlatformRegular}, ""},
		{"untyped has no icon", Link{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.link.IconName(); got != tt.expected {
				t.Errorf("IconName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLinkPatch_IsEmpty(t *testing.T) {
	title := "New"
	if !(&LinkPatch{}).IsEmpty() {
		t.Error("empty patch should report IsEmpty() = true")
	}
	if (&LinkPatch{Title: &title}).IsEmpty() {
		t.Error("patch with title should report IsEmpty() = false")
	}
}
