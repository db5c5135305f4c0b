// Package flags registers the command line flags shared by the scrub commands.
package flags

import (
	"github.com/alexai-ops/secretscrub/pkg/config"
	"github.com/spf13/cobra"
)

// DefaultMaxFileSize is the --max-file-size default in human readable form.
const DefaultMaxFileSize = "10MB"

// AddRuleFlags adds the flags that select the effective rule set.
func AddRuleFlags(cmd *cobra.Command, opts *config.ScrubOptions) {
	cmd.Flags().StringSliceVarP(&opts.RuleSources, "rules", "r", opts.RuleSources, "Additional rules file or http(s) URL, can be repeated (YAML, JSON or JSON5)")
	cmd.Flags().StringSliceVarP(&opts.ConfidenceFilter, "confidence", "", opts.ConfidenceFilter, "Only use rules with these confidence levels (low, medium, high, trufflehog-unverified), comma separated")
}

// AddScrubFlags adds the file selection and detection flags.
func AddScrubFlags(cmd *cobra.Command, opts *config.ScrubOptions, maxFileSize *string) {
	AddRuleFlags(cmd, opts)

	cmd.Flags().StringSliceVarP(&opts.Extensions, "ext", "e", opts.Extensions, "File extensions to scan, comma separated")
	cmd.Flags().StringSliceVarP(&opts.ExcludedDirs, "exclude-dir", "x", opts.ExcludedDirs, "Directory names to skip in addition to hidden directories")
	cmd.Flags().StringVarP(maxFileSize, "max-file-size", "", DefaultMaxFileSize, "Skip files larger than this size, e.g. 500KB or 10MB")
	cmd.Flags().StringVarP(&opts.Placeholder, "placeholder", "p", opts.Placeholder, "Replacement for secrets matched by generic rules")
	cmd.Flags().IntVarP(&opts.MaxScanGoRoutines, "threads", "", opts.MaxScanGoRoutines, "Number of files processed concurrently")
	cmd.Flags().BoolVarP(&opts.TruffleHog, "trufflehog", "", opts.TruffleHog, "Also run the TruffleHog detectors (no verification requests are made)")
	cmd.Flags().DurationVarP(&opts.HitTimeout, "hit-timeout", "", opts.HitTimeout, "Maximum time to spend detecting secrets in a single file")
}
