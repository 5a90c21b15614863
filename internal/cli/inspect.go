package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "match <path>",
		Short:   MsgMatchShort,
		Long:    MsgMatchLong,
		Example: MsgMatchExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			proj, err := loadProject(opts, nil)
			if err != nil {
				return err
			}
			m, err := proj.matcher()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderMatch(args[0], m.Explain(args[0])))
			return nil
		},
	}
}

func newRulesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: MsgRulesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			proj, err := loadProject(opts, nil)
			if err != nil {
				return err
			}
			// Compiling catches bad patterns and unknown transforms
			if _, err := proj.matcher(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderRules(proj.rules))
			return nil
		},
	}
}
