package rules

import (
	"context"
	"fmt"
	"io"

	"github.com/alexai-ops/secretscrub/internal/cmd/flags"
	"github.com/alexai-ops/secretscrub/pkg/config"
	"github.com/alexai-ops/secretscrub/pkg/format"
	pkgrules "github.com/alexai-ops/secretscrub/pkg/scanner/rules"
	"github.com/alexai-ops/secretscrub/pkg/scanner/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewRulesCmd() *cobra.Command {
	opts := config.DefaultScrubOptions()

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule set in priority order",
		Long: `Print the rules a scrub run would use as a rules file, highest priority first.

The output can be edited and passed back with --rules. Rules marked generic are
always ranked behind the family specific ones and use the generic placeholder.`,
		Example: `
# Show the built-in rules
secretscrub rules

# Show the rules including a custom file, only high confidence
secretscrub rules --rules my-rules.yml --confidence high
		`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := PrintRules(cmd.Context(), opts, cmd.OutOrStdout()); err != nil {
				log.Fatal().Err(err).Msg("Failed printing rules")
			}
		},
	}
	flags.AddRuleFlags(rulesCmd, &opts)

	return rulesCmd
}

// PrintRules writes the effective rule set as YAML in the rules file format.
func PrintRules(ctx context.Context, opts config.ScrubOptions, out io.Writer) error {
	for _, source := range opts.RuleSources {
		if err := config.ValidateRuleSource(source); err != nil {
			return err
		}
	}

	patterns, err := pkgrules.Load(ctx, pkgrules.LoadOptions{
		Sources:          opts.RuleSources,
		ConfidenceFilter: opts.ConfidenceFilter,
	})
	if err != nil {
		return err
	}

	file := types.RulesFile{Patterns: make([]types.RulesFileEntry, 0, len(patterns))}
	for _, p := range patterns {
		file.Patterns = append(file.Patterns, types.RulesFileEntry{Pattern: p})
	}

	rendered, err := format.MarshalYAML(file)
	if err != nil {
		return fmt.Errorf("rendering rules: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}
