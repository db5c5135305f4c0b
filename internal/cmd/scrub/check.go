package scrub

import (
	"github.com/alexai-ops/secretscrub/internal/cmd/flags"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewCheckCmd() *cobra.Command {
	opts := newCommandOptions(true)

	checkCmd := &cobra.Command{
		Use:   "check [root]",
		Short: "Report files that contain secrets without modifying them",
		Long: `Run the same detection as scrub without writing any file.

Every secret is reported as a hit with a masked preview. The command exits with
status 1 when at least one file would be modified, which makes it usable as a
pre-commit hook or CI gate.`,
		Example: `
# Fail the pipeline when a secret is committed
secretscrub check . --log-level hit

# JSON findings for further processing
secretscrub check ./repo --json --logfile findings.jsonl
		`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := execute(cmd.Context(), opts, args, cmd.OutOrStdout())
			if err != nil {
				log.Fatal().Err(err).Msg("Check failed")
			}
			if summary.Changed() {
				log.Warn().Int("files", summary.Modified).Msg("Secrets found")
				return ErrSecretsFound
			}
			return nil
		},
	}
	flags.AddScrubFlags(checkCmd, &opts.ScrubOptions, &opts.maxFileSize)

	return checkCmd
}
