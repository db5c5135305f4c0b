package result

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

type FileStatus int

const (
	// StatusClean means no secret was found and the file was not touched.
	StatusClean FileStatus = iota
	// StatusModified means the file was rewritten.
	StatusModified
	// StatusWouldModify means a dry run found secrets.
	StatusWouldModify
	// StatusUnreadable means the file could not be read or decoded as text.
	StatusUnreadable
	// StatusWriteFailed means secrets were found but the rewrite failed.
	StatusWriteFailed
	// StatusOversized means the file exceeded the size limit when it was opened.
	StatusOversized
)

func (s FileStatus) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusModified:
		return "modified"
	case StatusWouldModify:
		return "would-modify"
	case StatusUnreadable:
		return "unreadable"
	case StatusWriteFailed:
		return "write-failed"
	case StatusOversized:
		return "oversized"
	default:
		return fmt.Sprintf("FileStatus(%d)", int(s))
	}
}

// FileResult is produced by a worker for exactly one file.
type FileResult struct {
	Path     string
	Status   FileStatus
	Families map[string]int
	Err      error
}

// Summary aggregates the file results of one run. It is only updated by the
// coordinating goroutine.
type Summary struct {
	DryRun      bool
	Scanned     int
	Modified    int
	Unreadable  int
	Oversized   int
	WriteFailed int
	Cancelled   bool
	// Families counts replaced secrets per family
	Families map[string]int
	// ModifiedFiles lists rewritten files, or files that would be rewritten in a dry run
	ModifiedFiles []string
	Errors        *multierror.Error
}

func NewSummary(dryRun bool) *Summary {
	return &Summary{DryRun: dryRun, Families: map[string]int{}, ModifiedFiles: []string{}}
}

func (s *Summary) Add(r FileResult) {
	switch r.Status {
	case StatusUnreadable:
		s.Unreadable++
	case StatusClean:
		s.Scanned++
	case StatusModified, StatusWouldModify:
		s.Scanned++
		s.Modified++
		s.ModifiedFiles = append(s.ModifiedFiles, r.Path)
	case StatusWriteFailed:
		s.Scanned++
		s.WriteFailed++
	case StatusOversized:
		s.Oversized++
	}

	if r.Status == StatusModified || r.Status == StatusWouldModify {
		for family, count := range r.Families {
			s.Families[family] += count
		}
	}

	if r.Err != nil {
		s.Errors = multierror.Append(s.Errors, fmt.Errorf("%s: %w", r.Path, r.Err))
	}
}

// Err returns the aggregated per-file errors or nil.
func (s *Summary) Err() error {
	return s.Errors.ErrorOrNil()
}

// Changed reports whether at least one file was or would be modified.
func (s *Summary) Changed() bool {
	return s.Modified > 0
}

// String is the summary line printed at the end of every run.
func (s *Summary) String() string {
	verb := "modified"
	if s.DryRun {
		verb = "would modify"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scanned %d files, %s %d", s.Scanned, verb, s.Modified)

	skipped := []string{}
	if s.Unreadable > 0 {
		skipped = append(skipped, fmt.Sprintf("%d unreadable", s.Unreadable))
	}
	if s.Oversized > 0 {
		skipped = append(skipped, fmt.Sprintf("%d oversized", s.Oversized))
	}
	if s.WriteFailed > 0 {
		skipped = append(skipped, fmt.Sprintf("%d write failures", s.WriteFailed))
	}
	if len(skipped) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(skipped, ", "))
	}

	if len(s.Families) > 0 {
		families := make([]string, 0, len(s.Families))
		for family := range s.Families {
			families = append(families, family)
		}
		sort.Strings(families)

		counts := make([]string, 0, len(families))
		for _, family := range families {
			counts = append(counts, fmt.Sprintf("%s=%d", family, s.Families[family]))
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(counts, ", "))
	}

	if s.Cancelled {
		b.WriteString(", cancelled")
	}
	return b.String()
}
