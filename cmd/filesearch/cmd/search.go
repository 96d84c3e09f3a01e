package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/filesearch/engine/internal/search"
)

func newSearchCmd() *cobra.Command {
	var maxResults int

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search indexed files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			query := strings.Join(args, " ")
			opts := search.Options{}
			if maxResults > 0 {
				opts.MaxResults = maxResults
			}

			resp, err := eng.Search(cmd.Context(), query, opts)
			if err != nil {
				return err
			}
			if resp.Error != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "search did not complete: %s\n", resp.Error)
			}
			if resp.Degraded {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: no embedding model available, results are lexical-only")
			}

			for i, r := range resp.Results {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. [%s] %s (score=%.4f)\n", i+1, r.MatchType, r.Path, r.Score)
				for _, ev := range r.Evidences {
					fmt.Fprintf(cmd.OutOrStdout(), "     %s\n", ev.Snippet)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d results in %dms\n", len(resp.Results), resp.ElapsedMs)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 0, "override the configured max_results")
	return cmd
}
