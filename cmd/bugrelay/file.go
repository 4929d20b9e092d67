package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"basegraph.app/bugrelay/internal/service"
)

const drainTimeout = 15 * time.Second

func newFileCmd(a *app) *cobra.Command {
	var params service.FileFromConversationParams

	cmd := &cobra.Command{
		Use:   "file",
		Short: "File an issue from a Crisp conversation",
		Example: `  bugrelay file --website 8c842203-7ed8 --session session_7b1f
  bugrelay file --website 8c842203-7ed8 --session session_7b1f --repo acme/app`,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := a.services()
			if err != nil {
				return err
			}
			pipeline := services.Pipeline()

			result, err := pipeline.FileFromConversation(cmd.Context(), params)

			// The note is posted in the background; give it a chance before exiting.
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
			if drainErr := pipeline.Drain(drainCtx); drainErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", drainErr)
			}

			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Issue #%d: %s\n", result.Issue.Number, result.Issue.Title)
			fmt.Fprintln(out, result.Issue.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.WebsiteID, "website", "", "Crisp website id")
	cmd.Flags().StringVar(&params.SessionID, "session", "", "Crisp conversation session id")
	cmd.Flags().StringVar(&params.GitHubRepo, "repo", "", "Target repository (owner/name); defaults to the workspace setting")
	_ = cmd.MarkFlagRequired("website")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
