// Package fileproc scans and rewrites a single candidate file.
package fileproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/alexai-ops/secretscrub/pkg/scan/result"
	"github.com/alexai-ops/secretscrub/pkg/scanner/redact"
	"github.com/alexai-ops/secretscrub/pkg/scanner/types"
	"github.com/h2non/filetype"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotUTF8  = errors.New("content is not valid UTF-8")
	ErrBinary   = errors.New("content looks binary")
	ErrTooLarge = errors.New("file exceeds the maximum size")
	createTemp  = os.CreateTemp
	renameFile  = os.Rename
)

// Finder locates secrets in text. *engine.Matcher implements it.
type Finder interface {
	FindAll(ctx context.Context, text []byte) ([]types.Finding, error)
	GenericPlaceholder() string
}

type Processor struct {
	finder      Finder
	reporter    *result.Reporter
	dryRun      bool
	maxFileSize int64
}

// NewProcessor creates a processor. A maxFileSize of zero disables the size check.
func NewProcessor(finder Finder, reporter *result.Reporter, dryRun bool, maxFileSize int64) *Processor {
	return &Processor{finder: finder, reporter: reporter, dryRun: dryRun, maxFileSize: maxFileSize}
}

// Process scans one file and rewrites it if at least one secret was replaced.
// Files without findings are never opened for writing.
func (p *Processor) Process(ctx context.Context, path string) result.FileResult {
	res := result.FileResult{Path: path, Status: result.StatusUnreadable}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = err
		return res
	}

	// the file may have grown since discovery
	if p.maxFileSize > 0 && info.Size() > p.maxFileSize {
		log.Warn().Str("file", path).Int64("size", info.Size()).Msg("Skipping file that grew beyond the size limit")
		res.Status = result.StatusOversized
		res.Err = ErrTooLarge
		return res
	}

	// #nosec G304 - path comes from walking the operator supplied root
	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	if err := CheckText(content); err != nil {
		log.Debug().Str("file", path).Err(err).Msg("Skipping non-text file")
		res.Err = err
		return res
	}

	findings, err := p.finder.FindAll(ctx, content)
	if err != nil {
		res.Err = err
		return res
	}

	redacted, err := redact.Apply(content, findings, p.finder.GenericPlaceholder())
	if err != nil {
		res.Err = err
		return res
	}

	res.Status = result.StatusClean
	if !redacted.Changed {
		log.Trace().Str("file", path).Msg("No secrets found")
		return res
	}

	res.Families = countFamilies(findings)

	if p.dryRun {
		res.Status = result.StatusWouldModify
		p.report(path, findings)
		return res
	}

	if err := WriteAtomic(path, redacted.Text, info.Mode().Perm()); err != nil {
		log.Error().Str("file", path).Err(err).Msg("Failed writing redacted file")
		res.Status = result.StatusWriteFailed
		res.Err = err
		return res
	}

	res.Status = result.StatusModified
	p.report(path, findings)
	log.Debug().Str("file", path).Int("replaced", redacted.Replaced).Msg("Redacted file")
	return res
}

func (p *Processor) report(path string, findings []types.Finding) {
	if p.reporter != nil {
		p.reporter.ReportFindings(path, findings, p.finder.GenericPlaceholder())
	}
}

// CheckText rejects content that must not be rewritten as text.
func CheckText(content []byte) error {
	if !utf8.Valid(content) {
		// valid text may start with an ASCII signature such as BM or MZ
		if kind, _ := filetype.Match(content); kind != filetype.Unknown {
			return fmt.Errorf("%w (%s)", ErrBinary, kind.MIME.Value)
		}
		return ErrNotUTF8
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return ErrBinary
	}
	return nil
}

// WriteAtomic replaces path with data. The data is written to a temporary file
// in the same directory, synced and renamed over the original.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := createTemp(dir, "."+filepath.Base(path)+".scrub-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("writing temporary file: %w", err))
	}
	if err := tmp.Chmod(perm); err != nil {
		return cleanup(fmt.Errorf("setting permissions: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("syncing temporary file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := renameFile(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func countFamilies(findings []types.Finding) map[string]int {
	families := map[string]int{}
	for _, f := range findings {
		families[f.Pattern.Name]++
	}
	return families
}
