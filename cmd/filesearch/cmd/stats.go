package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "files_in_manifest=%d\n", eng.ManifestCount())
			return nil
		},
	}
}
