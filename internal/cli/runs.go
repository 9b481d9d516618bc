// SPDX-License-Identifier: MIT
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/ssetree/store"
)

// RunsOptions holds flags for the runs commands.
type RunsOptions struct {
	*RootOptions
	Database string
	Name     string
	Limit    int
}

// NewRunsCommand creates the runs command with its list and show children.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run history recorded with compute --db",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List recorded runs, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()
			recs, err := st.List(cmd.Context(), opts.Name, opts.Limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list runs", err)
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tMODEL\tTIPS\tLOGLIK\tCREATED")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.10g\t%s\n",
					r.ID, r.Name, r.Model, r.Tips, r.LogLik, r.CreatedAt.Format("2006-01-02 15:04:05"))
			}

			return tw.Flush()
		},
	}
	list.Flags().StringVar(&opts.Name, "name", "", "only runs of this problem")
	list.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs, 0 = all")

	show := &cobra.Command{
		Use:           "show <run-id>",
		Short:         "Show one recorded run",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid run id", err)
			}
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()
			r, err := st.Get(cmd.Context(), id)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read run", err)
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "run      %s\n", r.ID)
			fmt.Fprintf(w, "name     %s\n", r.Name)
			fmt.Fprintf(w, "model    %s\n", r.Model)
			fmt.Fprintf(w, "method   %s\n", r.Method)
			fmt.Fprintf(w, "tips     %d\n", r.Tips)
			fmt.Fprintf(w, "loglik   %.12g\n", r.LogLik)
			fmt.Fprintf(w, "merge    %v\n", r.MergeBranch)
			fmt.Fprintf(w, "node_m   %v\n", r.NodeM)
			fmt.Fprintf(w, "stages   %d on %d workers in %s\n", r.Stages, r.Workers, r.Elapsed)
			fmt.Fprintf(w, "created  %s\n", r.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"))

			return nil
		},
	}

	cmd.AddCommand(list, show)

	return cmd
}
