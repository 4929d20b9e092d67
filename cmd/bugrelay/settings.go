package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change workspace plugin settings",
	}
	cmd.AddCommand(newSettingsGetCmd(a))
	cmd.AddCommand(newSettingsSetCmd(a))
	return cmd
}

func newSettingsGetCmd(a *app) *cobra.Command {
	var websiteID string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the workspace settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := a.services()
			if err != nil {
				return err
			}

			settings, err := services.Settings().Get(cmd.Context(), websiteID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(settings)
		},
	}

	cmd.Flags().StringVar(&websiteID, "website", "", "Crisp website id")
	_ = cmd.MarkFlagRequired("website")
	return cmd
}

func newSettingsSetCmd(a *app) *cobra.Command {
	var websiteID, repo string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the repository issues are filed on",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := a.services()
			if err != nil {
				return err
			}

			if err := services.Settings().Save(cmd.Context(), websiteID, repo); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "github_repo set to %s\n", repo)
			return nil
		},
	}

	cmd.Flags().StringVar(&websiteID, "website", "", "Crisp website id")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository in owner/name form")
	_ = cmd.MarkFlagRequired("website")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}
