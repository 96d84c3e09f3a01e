package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filesearch/engine/internal/extract"
	"github.com/filesearch/engine/internal/index"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [roots...]",
		Short: "Index one or more directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			// The CLI only ever indexes local directories, but it goes
			// through the Connector boundary (§6) rather than passing args
			// straight to Engine.Index, so a future non-local Connector
			// slots in here without changing the Engine.Index call below.
			roots, err := extract.MaterializeRoots(cmd.Context(), []extract.Connector{
				&extract.LocalConnector{Roots: args},
			})
			if err != nil {
				return err
			}

			report, err := eng.Index(cmd.Context(), roots, index.Options{}, func(ev index.ProgressEvent) {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] %s %s\n", ev.Processed, ev.Total, ev.Kind, ev.CurrentPath)
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed=%d content_indexed=%d metadata_only=%d deleted=%d errors=%d elapsed=%s\n",
				report.Indexed, report.ContentIndexed, report.MetadataOnly, report.Deleted, len(report.Errors), report.Elapsed)
			for _, e := range report.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
			}
			return nil
		},
	}
	return cmd
}
