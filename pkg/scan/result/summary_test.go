package result

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryAdd(t *testing.T) {
	s := NewSummary(false)
	s.Add(FileResult{Path: "a.py", Status: StatusClean})
	s.Add(FileResult{Path: "b.py", Status: StatusModified, Families: map[string]int{"OpenAI API Key": 2}})
	s.Add(FileResult{Path: "c.py", Status: StatusModified, Families: map[string]int{"OpenAI API Key": 1, "JSON Web Token": 1}})
	s.Add(FileResult{Path: "d.bin", Status: StatusUnreadable, Err: errors.New("invalid UTF-8")})
	s.Add(FileResult{Path: "e.py", Status: StatusWriteFailed, Families: map[string]int{"Slack Token": 1}, Err: errors.New("permission denied")})
	s.Add(FileResult{Path: "f.py", Status: StatusOversized, Err: errors.New("file exceeds the maximum size")})

	expected := &Summary{
		Scanned:       4,
		Modified:      2,
		Unreadable:    1,
		Oversized:     1,
		WriteFailed:   1,
		Families:      map[string]int{"OpenAI API Key": 3, "JSON Web Token": 1},
		ModifiedFiles: []string{"b.py", "c.py"},
	}
	if diff := cmp.Diff(expected, s, cmpopts.IgnoreFields(Summary{}, "Errors")); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	err := s.Err()
	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
	assert.Contains(t, err.Error(), "d.bin: invalid UTF-8")
	assert.Contains(t, err.Error(), "e.py: permission denied")
	assert.True(t, s.Changed())
}

func TestSummaryString(t *testing.T) {
	tests := []struct {
		name     string
		summary  *Summary
		expected string
	}{
		{
			name:     "empty run",
			summary:  NewSummary(false),
			expected: "Scanned 0 files, modified 0",
		},
		{
			name: "modified files with families",
			summary: &Summary{
				Scanned:  3,
				Modified: 1,
				Families: map[string]int{"OpenAI API Key": 1, "AWS Access Key ID": 2},
			},
			expected: "Scanned 3 files, modified 1 [AWS Access Key ID=2, OpenAI API Key=1]",
		},
		{
			name: "dry run with skipped files",
			summary: &Summary{
				DryRun:      true,
				Scanned:     2,
				Modified:    1,
				Unreadable:  1,
				Oversized:   2,
				WriteFailed: 0,
				Cancelled:   true,
			},
			expected: "Scanned 2 files, would modify 1 (1 unreadable, 2 oversized), cancelled",
		},
		{
			name:     "write failures",
			summary:  &Summary{Scanned: 1, WriteFailed: 1},
			expected: "Scanned 1 files, modified 0 (1 write failures)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.summary.String())
		})
	}
}

func TestSummaryNoErrors(t *testing.T) {
	s := NewSummary(true)
	s.Add(FileResult{Path: "a.py", Status: StatusClean})
	assert.NoError(t, s.Err())
	assert.False(t, s.Changed())
}

func TestFileStatusString(t *testing.T) {
	assert.Equal(t, "modified", StatusModified.String())
	assert.Equal(t, "write-failed", StatusWriteFailed.String())
	assert.Equal(t, "oversized", StatusOversized.String())
	assert.Equal(t, "FileStatus(42)", FileStatus(42).String())
}
