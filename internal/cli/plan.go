// SPDX-License-Identifier: MIT
package cli

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/ssetree/engine"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <problem.yaml|->",
		Short: "Print the stage graph of a problem without running it",
		Long: `Print the stage graph the engine would execute for a problem file:
one line per stage in topological order, with its kind, tree node and the
stages feeding its input ports.

Example:
  ssetree plan problem.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := LoadProblem(args[0], cmd.InOrStdin())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load problem", err)
			}
			m, desc, err := p.build()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid problem", err)
			}
			s, err := engine.Plan(desc, m, engine.WithLogger(rootOpts.logger()))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to plan", err)
			}

			return s.Describe(cmd.OutOrStdout())
		},
	}

	return cmd
}
