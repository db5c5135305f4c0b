// Package scanner defines the contracts shared by scrub runs.
package scanner

import "context"

// BaseScanner defines the minimal contract of a scrub run.
type BaseScanner interface {
	// Scan processes every candidate file and returns a fatal error, if any.
	Scan(ctx context.Context) error
}

// ScannerWithStatus extends BaseScanner with a progress line for the status shortcut.
type ScannerWithStatus interface {
	BaseScanner
	GetStatus() string
}
