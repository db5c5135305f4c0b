package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/alexai-ops/secretscrub/pkg/format"
)

var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9_+-]+$`)

// ValidateRoot checks that the scan root exists, is a directory and can be listed.
func ValidateRoot(root string) error {
	if root == "" {
		return errors.New("root directory cannot be empty")
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot access root directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}

	f, err := os.Open(root) // #nosec G304 - operator chosen scan root
	if err != nil {
		return fmt.Errorf("cannot read root directory %s: %w", root, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("cannot list root directory %s: %w", root, err)
	}

	return nil
}

// NormalizeExtensions lower-cases extensions, adds a missing leading dot and rejects malformed entries.
func NormalizeExtensions(extensions []string) ([]string, error) {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !extensionPattern.MatchString(ext) {
			return nil, fmt.Errorf("invalid file extension %q", ext)
		}
		normalized = append(normalized, ext)
	}

	if len(normalized) == 0 {
		return nil, errors.New("extension allow-list cannot be empty")
	}
	return normalized, nil
}

// ParseMaxFileSize parses a human-readable size string (e.g., "500kb", "10MB") into bytes.
func ParseMaxFileSize(sizeStr string) (int64, error) {
	size, err := format.ParseHumanSize(sizeStr)
	if err != nil {
		return 0, fmt.Errorf("failed to parse max file size: %w", err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("max file size must be positive, got %s", sizeStr)
	}
	return size, nil
}

// ValidatePlaceholder rejects empty placeholders and placeholders spanning lines.
func ValidatePlaceholder(placeholder string) error {
	if strings.TrimSpace(placeholder) == "" {
		return errors.New("placeholder cannot be empty")
	}
	if strings.ContainsAny(placeholder, "\r\n") {
		return errors.New("placeholder must be a single line")
	}
	return nil
}

// ValidateRuleSource validates a rules location: an http(s) URL or an existing local file.
func ValidateRuleSource(source string) error {
	if source == "" {
		return errors.New("rules source cannot be empty")
	}

	if IsRemoteSource(source) {
		return ValidateURL(source, "rules URL")
	}

	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("cannot access rules file %s: %w", source, err)
	}
	if info.IsDir() {
		return fmt.Errorf("rules file %s is a directory", source)
	}
	return nil
}

// IsRemoteSource reports whether a rules source should be downloaded.
func IsRemoteSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ValidateURL validates that a string is a valid URL.
func ValidateURL(urlStr string, fieldName string) error {
	if urlStr == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", fieldName, err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("%s must include a scheme (http/https)", fieldName)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}

	return nil
}

// ValidateThreadCount validates that the thread count is within acceptable bounds.
func ValidateThreadCount(threads int) error {
	if threads < 1 {
		return fmt.Errorf("thread count must be at least 1, got %d", threads)
	}
	if threads > 100 {
		return fmt.Errorf("thread count too high (max 100), got %d", threads)
	}
	return nil
}
