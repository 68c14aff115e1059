package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func completionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "completions",
		Short: "List announced completions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			items, err := a.store.Completions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no completions")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tSESSION\tTYPE\tNAME")
			for _, c := range items {
				kind := "achievement"
				if c.Requirement {
					kind = "requirement"
				}
				session := c.SessionID
				if len(session) > 8 {
					session = session[:8]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.TS, session, kind, c.Name)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of completions (0 for all)")
	return cmd
}
