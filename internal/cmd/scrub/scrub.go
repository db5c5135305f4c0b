package scrub

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alexai-ops/secretscrub/internal/cmd/flags"
	"github.com/alexai-ops/secretscrub/pkg/config"
	"github.com/alexai-ops/secretscrub/pkg/logging"
	"github.com/alexai-ops/secretscrub/pkg/scan/result"
	"github.com/alexai-ops/secretscrub/pkg/scan/runner"
	"github.com/alexai-ops/secretscrub/pkg/system"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ErrSecretsFound is returned by check when at least one file would be modified.
var ErrSecretsFound = errors.New("secrets found")

type commandOptions struct {
	config.ScrubOptions
	maxFileSize string
}

func newCommandOptions(dryRun bool) *commandOptions {
	opts := &commandOptions{ScrubOptions: config.DefaultScrubOptions()}
	opts.DryRun = dryRun
	return opts
}

func NewScrubCmd() *cobra.Command {
	opts := newCommandOptions(false)

	scrubCmd := &cobra.Command{
		Use:   "scrub [root]",
		Short: "Redact secrets in place",
		Long: `Walk a directory tree and replace every detected credential with a placeholder.

Files are only rewritten when a secret was found. Each rewrite goes to a temporary
file in the same directory that is renamed over the original, so an interrupted run
never leaves a half written file. Running scrub twice in a row changes nothing the
second time.

Hidden directories and dependency caches (node_modules, vendor, venv ...) are skipped.`,
		Example: `
# Scrub the current directory
secretscrub scrub

# Scrub a checkout with custom rules and 4 workers
secretscrub scrub ./repo --rules my-rules.yml --threads 4

# Only Python and shell files, generic matches become [REDACTED]
secretscrub scrub ./repo --ext py,sh --placeholder "[REDACTED]"
		`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			summary, err := execute(cmd.Context(), opts, args, cmd.OutOrStdout())
			if err != nil {
				log.Fatal().Err(err).Msg("Scrub failed")
			}
			if summary.Err() != nil {
				log.Debug().Err(summary.Err()).Msg("Files with errors")
			}
		},
	}
	flags.AddScrubFlags(scrubCmd, &opts.ScrubOptions, &opts.maxFileSize)

	return scrubCmd
}

// ResolveOptions validates the flag values and turns them into the options of a run.
func ResolveOptions(opts config.ScrubOptions, maxFileSize string, args []string) (config.ScrubOptions, error) {
	if len(args) > 0 {
		opts.Root = args[0]
	}
	if err := config.ValidateRoot(opts.Root); err != nil {
		return opts, err
	}

	extensions, err := config.NormalizeExtensions(opts.Extensions)
	if err != nil {
		return opts, err
	}
	opts.Extensions = extensions

	if maxFileSize != "" {
		size, err := config.ParseMaxFileSize(maxFileSize)
		if err != nil {
			return opts, err
		}
		opts.MaxFileSize = size
	}

	if err := config.ValidatePlaceholder(opts.Placeholder); err != nil {
		return opts, err
	}
	if err := config.ValidateThreadCount(opts.MaxScanGoRoutines); err != nil {
		return opts, err
	}
	for _, source := range opts.RuleSources {
		if err := config.ValidateRuleSource(source); err != nil {
			return opts, err
		}
	}
	if opts.HitTimeout < 0 {
		return opts, fmt.Errorf("hit timeout must not be negative, got %s", opts.HitTimeout)
	}
	return opts, nil
}

// execute runs a scrub and always prints the summary line to out.
func execute(ctx context.Context, opts *commandOptions, args []string, out io.Writer) (*result.Summary, error) {
	resolved, err := ResolveOptions(opts.ScrubOptions, opts.maxFileSize, args)
	if err != nil {
		return nil, err
	}

	ctx, stop := system.CancelOnSignal(ctx)
	defer stop()
	logging.RegisterInterruptHook(stop)
	defer logging.RegisterInterruptHook(nil)

	summary, err := runner.Run(ctx, resolved)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("scanned", summary.Scanned).
		Int("modified", summary.Modified).
		Int("unreadable", summary.Unreadable).
		Int("oversized", summary.Oversized).
		Int("writeFailed", summary.WriteFailed).
		Msg("Scan finished")
	_, _ = fmt.Fprintln(out, summary.String())
	return summary, nil
}
