// Package config provides the scrub configuration types and validation helpers.
// Defaults are supplied here and passed into the pipeline explicitly; the
// matching and walking packages never fall back to hardcoded values of their own.
package config

import "time"

// DefaultExtensions is the allow-list of text-like file extensions scanned when --ext is not given.
var DefaultExtensions = []string{
	".py", ".js", ".ts", ".json", ".md", ".txt", ".sh", ".env",
	".yml", ".yaml", ".toml", ".ini", ".cfg", ".conf", ".sql", ".go",
}

// DefaultExcludedDirs lists dependency-cache and build directory names that are never descended into.
// Hidden directories (leading dot) are excluded independently of this list.
var DefaultExcludedDirs = []string{
	"node_modules", "vendor", "venv", "__pycache__", "site-packages",
	"bower_components", "dist", "build", "target",
}

// DefaultPlaceholder replaces secrets matched by a family without a placeholder of its own.
const DefaultPlaceholder = "REDACTED_SECRET_PLACEHOLDER"

// ScrubOptions contains every setting of a scrub run.
type ScrubOptions struct {
	// Root is the directory that is walked
	Root string
	// Extensions is the allow-list of file extensions, including the leading dot
	Extensions []string
	// ExcludedDirs are directory names that are skipped in addition to hidden directories
	ExcludedDirs []string
	// MaxFileSize is the largest file, in bytes, that is loaded and scanned
	MaxFileSize int64
	// Placeholder is the generic replacement text
	Placeholder string
	// RuleSources are additional rule files or URLs
	RuleSources []string
	// ConfidenceFilter keeps only rules with one of these confidence levels
	ConfidenceFilter []string
	// MaxScanGoRoutines controls how many files are processed concurrently
	MaxScanGoRoutines int
	// TruffleHog enables the TruffleHog detector stage
	TruffleHog bool
	// HitTimeout is the maximum time to wait for hit detection per file
	HitTimeout time.Duration
	// DryRun reports what would change without writing
	DryRun bool
}

// DefaultScrubOptions returns the default values for a scrub run rooted at the current directory.
func DefaultScrubOptions() ScrubOptions {
	return ScrubOptions{
		Root:              ".",
		Extensions:        append([]string{}, DefaultExtensions...),
		ExcludedDirs:      append([]string{}, DefaultExcludedDirs...),
		MaxFileSize:       10 * 1000 * 1000, // 10MB
		Placeholder:       DefaultPlaceholder,
		RuleSources:       []string{},
		ConfidenceFilter:  []string{},
		MaxScanGoRoutines: 1,
		TruffleHog:        false,
		HitTimeout:        60 * time.Second,
		DryRun:            false,
	}
}
