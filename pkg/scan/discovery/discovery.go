// Package discovery selects the candidate files of a scrub run.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexai-ops/secretscrub/pkg/format"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Root string
	// Extensions is the allow-list, lower case with leading dot
	Extensions []string
	// ExcludedDirs are directory names skipped anywhere in the tree
	ExcludedDirs []string
	// MaxFileSize in bytes, zero disables the limit
	MaxFileSize int64
}

type Candidate struct {
	Path string
	Size int64
}

type Result struct {
	// Files are the candidates sorted by path
	Files []Candidate
	// Oversized are allow-listed files above MaxFileSize, never read
	Oversized []Candidate
	// SkippedDirs counts excluded and hidden directories
	SkippedDirs int
	// Unreadable counts entries that could not be inspected
	Unreadable int
}

// Discover walks opts.Root without following symlinks below it. A symlinked
// root is resolved first. Only a failure on the root itself is returned as an error.
func Discover(ctx context.Context, opts Options) (Result, error) {
	res := Result{Files: []Candidate{}, Oversized: []Candidate{}}

	extensions := mapset.NewThreadUnsafeSet[string]()
	for _, ext := range opts.Extensions {
		extensions.Add(strings.ToLower(ext))
	}
	excluded := mapset.NewThreadUnsafeSet(opts.ExcludedDirs...)

	root, err := resolveRoot(opts.Root)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %s: %w", opts.Root, err)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == root {
				return err
			}
			log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable path")
			res.Unreadable++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && IsExcludedDir(d.Name(), excluded) {
				log.Trace().Str("dir", path).Msg("Skipping excluded directory")
				res.SkippedDirs++
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !extensions.Contains(strings.ToLower(filepath.Ext(d.Name()))) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable file")
			res.Unreadable++
			return nil
		}

		candidate := Candidate{Path: path, Size: info.Size()}
		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			log.Warn().Str("file", path).Str("size", format.HumanSize(info.Size())).Str("limit", format.HumanSize(opts.MaxFileSize)).Msg("Skipping oversized file")
			res.Oversized = append(res.Oversized, candidate)
			return nil
		}

		res.Files = append(res.Files, candidate)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Path < res.Files[j].Path })
	sort.Slice(res.Oversized, func(i, j int) bool { return res.Oversized[i].Path < res.Oversized[j].Path })

	log.Debug().Int("candidates", len(res.Files)).Int("oversized", len(res.Oversized)).Int("skippedDirs", res.SkippedDirs).Msg("Discovered files")
	return res, nil
}

func resolveRoot(root string) (string, error) {
	root = filepath.Clean(root)
	info, err := os.Lstat(root)
	if err != nil {
		return "", err
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return root, nil
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}
	log.Debug().Str("root", root).Str("resolved", resolved).Msg("Resolved symlinked root")
	return resolved, nil
}

// IsExcludedDir reports whether a directory is hidden or a dependency cache.
func IsExcludedDir(name string, excluded mapset.Set[string]) bool {
	return strings.HasPrefix(name, ".") || excluded.Contains(name)
}
