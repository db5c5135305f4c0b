package format

import (
	"runtime"
	"testing"
)

func TestGetPlatformAgnosticNewline(t *testing.T) {
	result := GetPlatformAgnosticNewline()

	if runtime.GOOS == "windows" {
		if result != "\r\n" {
			t.Errorf("GetPlatformAgnosticNewline() on Windows = %q, want %q", result, "\r\n")
		}
	} else {
		if result != "\n" {
			t.Errorf("GetPlatformAgnosticNewline() on Unix = %q, want %q", result, "\n")
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		visible  int
		expected string
	}{
		{name: "openai key", secret: "sk-ABCDEFGHIJKLMNOPQRSTUVWX1234", visible: 4, expected: "sk-A********"},
		{name: "short secret hides everything", secret: "abc", visible: 4, expected: "***"},
		{name: "visible capped to a quarter", secret: "abcdefgh", visible: 6, expected: "ab******"},
		{name: "negative visible", secret: "abcdefgh", visible: -1, expected: "********"},
		{name: "empty", secret: "", visible: 4, expected: ""},
		{name: "ansi and newlines removed", secret: "\x1b[31mabcd\nefgh\x1b[0m", visible: 2, expected: "ab*******"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MaskSecret(tt.secret, tt.visible)
			if result != tt.expected {
				t.Errorf("MaskSecret(%q, %d) = %q, want %q", tt.secret, tt.visible, result, tt.expected)
			}
		})
	}
}
