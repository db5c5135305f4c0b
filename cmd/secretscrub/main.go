package main

import (
	"fmt"

	"github.com/alexai-ops/secretscrub/internal/cmd/common"
	"github.com/alexai-ops/secretscrub/internal/cmd/rules"
	"github.com/alexai-ops/secretscrub/internal/cmd/scrub"
	"github.com/spf13/cobra"
)

func main() {
	common.Run(newRootCmd())
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "secretscrub",
		Short:   "Find and redact credentials in source trees",
		Long:    `Secretscrub walks a directory tree, detects API keys, tokens, private keys and other credentials in text files and replaces them in place with family specific placeholders.`,
		Version: common.Version,
	}

	rootCmd.AddCommand(scrub.NewScrubCmd())
	rootCmd.AddCommand(scrub.NewCheckCmd())
	rootCmd.AddCommand(rules.NewRulesCmd())

	common.SetupPersistentPreRun(rootCmd)
	common.AddCommonFlags(rootCmd)

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Version}} (commit %s, built %s)\n", common.Commit, common.Date))

	return rootCmd
}
