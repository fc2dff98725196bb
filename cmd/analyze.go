package cmd

import (
	"strings"

	"hotel_concierge/src/i18n"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <message>",
		Short: "Print the intent of a message as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			lang := i18n.Resolve(a.cfg.Engine.Language)
			intent := a.registry.Deps().Matcher.Classify(strings.Join(args, " "), lang)
			return printJSON(cmd, intent)
		},
	}
}
