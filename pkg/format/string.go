package format

import (
	"runtime"
	"strings"

	"github.com/acarl005/stripansi"
)

func GetPlatformAgnosticNewline() string {
	newline := "\n"
	if runtime.GOOS == "windows" {
		newline = "\r\n"
	}
	return newline
}

// MaskSecret returns a log-safe preview of a secret: the first visible characters
// followed by asterisks. Control sequences and newlines are removed first.
func MaskSecret(secret string, visible int) string {
	cleaned := stripansi.Strip(secret)
	cleaned = strings.ReplaceAll(cleaned, "\r", "")
	cleaned = strings.ReplaceAll(cleaned, "\n", " ")

	runes := []rune(cleaned)
	if visible < 0 {
		visible = 0
	}
	// never reveal more than a quarter of the secret
	if limit := len(runes) / 4; visible > limit {
		visible = limit
	}

	masked := len(runes) - visible
	if masked > 8 {
		masked = 8
	}
	return string(runes[:visible]) + strings.Repeat("*", masked)
}
