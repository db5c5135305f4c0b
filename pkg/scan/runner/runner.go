// Package runner wires discovery, matching and redaction into a scrub run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/alexai-ops/secretscrub/pkg/config"
	"github.com/alexai-ops/secretscrub/pkg/logging"
	"github.com/alexai-ops/secretscrub/pkg/scan/discovery"
	"github.com/alexai-ops/secretscrub/pkg/scan/fileproc"
	"github.com/alexai-ops/secretscrub/pkg/scan/result"
	"github.com/alexai-ops/secretscrub/pkg/scanner"
	"github.com/alexai-ops/secretscrub/pkg/scanner/engine"
	"github.com/alexai-ops/secretscrub/pkg/scanner/rules"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wandb/parallel"
)

// Scrubber performs one run over a directory tree.
type Scrubber struct {
	opts      config.ScrubOptions
	matcher   *engine.Matcher
	processor *fileproc.Processor
	summary   *result.Summary

	total     atomic.Int64
	processed atomic.Int64
}

var _ scanner.ScannerWithStatus = (*Scrubber)(nil)

// NewScrubber loads the rules and builds the matcher. Invalid rules are fatal.
func NewScrubber(ctx context.Context, opts config.ScrubOptions) (*Scrubber, error) {
	patterns, err := rules.Load(ctx, rules.LoadOptions{
		Sources:          opts.RuleSources,
		ConfidenceFilter: opts.ConfidenceFilter,
	})
	if err != nil {
		return nil, err
	}

	detectors := []engine.Detector{}
	if opts.TruffleHog {
		detectors = append(detectors, engine.NewTruffleHog())
	}

	matcher, err := engine.NewMatcher(patterns, engine.Options{
		GenericPlaceholder: opts.Placeholder,
		Detectors:          detectors,
		MaxGoRoutines:      opts.MaxScanGoRoutines,
		HitTimeout:         opts.HitTimeout,
	})
	if err != nil {
		return nil, err
	}

	return NewScrubberWithMatcher(opts, matcher), nil
}

func NewScrubberWithMatcher(opts config.ScrubOptions, matcher *engine.Matcher) *Scrubber {
	reporter := result.NewReporter(opts.DryRun)
	return &Scrubber{
		opts:      opts,
		matcher:   matcher,
		processor: fileproc.NewProcessor(matcher, reporter, opts.DryRun, opts.MaxFileSize),
		summary:   result.NewSummary(opts.DryRun),
	}
}

// Scan discovers the candidate files and processes them. Per-file failures end
// up in the summary; only a missing or unreadable root is returned.
func (s *Scrubber) Scan(ctx context.Context) error {
	if err := config.ValidateRoot(s.opts.Root); err != nil {
		return err
	}

	found, err := discovery.Discover(ctx, discovery.Options{
		Root:         s.opts.Root,
		Extensions:   s.opts.Extensions,
		ExcludedDirs: s.opts.ExcludedDirs,
		MaxFileSize:  s.opts.MaxFileSize,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.summary.Cancelled = true
			return nil
		}
		return err
	}

	s.summary.Oversized += len(found.Oversized)
	s.summary.Unreadable += found.Unreadable
	s.total.Store(int64(len(found.Files)))
	log.Info().Int("files", len(found.Files)).Str("root", s.opts.Root).Bool("dryRun", s.opts.DryRun).Msg("Scanning files")

	threads := s.opts.MaxScanGoRoutines
	if threads < 1 {
		threads = 1
	}

	results := make(chan result.FileResult)
	aggregated := make(chan struct{})
	go func() {
		for r := range results {
			if errors.Is(r.Err, context.Canceled) {
				s.summary.Cancelled = true
				continue
			}
			s.summary.Add(r)
		}
		close(aggregated)
	}()

	group := parallel.Limited(ctx, threads)
	for _, candidate := range found.Files {
		if ctx.Err() != nil {
			break
		}
		path := candidate.Path
		group.Go(func(ctx context.Context) {
			if ctx.Err() != nil {
				return
			}
			results <- s.processor.Process(ctx, path)
			s.processed.Add(1)
		})
	}

	group.Wait()
	close(results)
	<-aggregated

	if ctx.Err() != nil {
		s.summary.Cancelled = true
	}
	if s.summary.Cancelled {
		log.Warn().Int64("processed", s.processed.Load()).Int64("total", s.total.Load()).Msg("Scan cancelled, remaining files were not touched")
	}
	return nil
}

func (s *Scrubber) Summary() *result.Summary {
	return s.summary
}

func (s *Scrubber) GetStatus() string {
	return fmt.Sprintf("%d/%d files processed", s.processed.Load(), s.total.Load())
}

func (s *Scrubber) statusEvent() *zerolog.Event {
	return log.Info().Str("progress", s.GetStatus())
}

// Run executes a complete scrub and returns its summary. The error is only
// set for fatal conditions: invalid rules or an unusable root.
func Run(ctx context.Context, opts config.ScrubOptions) (*result.Summary, error) {
	s, err := NewScrubber(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	logging.RegisterStatusHook(s.statusEvent)
	defer logging.RegisterStatusHook(nil)

	if err := s.Scan(ctx); err != nil {
		return s.Summary(), err
	}
	return s.Summary(), nil
}
