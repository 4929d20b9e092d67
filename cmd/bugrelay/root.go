package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"basegraph.app/bugrelay/internal/service"
)

var (
	version = "dev"
	commit  = "unknown"
)

type app struct {
	out          io.Writer
	verbose      bool
	loadServices func(verbose bool) (*service.Services, error)
}

func (a *app) services() (*service.Services, error) {
	return a.loadServices(a.verbose)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bugrelay",
		Short: "File GitHub issues from Crisp conversations",
		Long: `bugrelay turns a Crisp support conversation into a triaged issue.

It fetches the transcript, asks the configured language model for a
structured bug report, files it on the workspace repository and leaves a
note in the conversation.

Configuration is read from the environment (or .env.cli in development).`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.SetOut(a.out)
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newFileCmd(a))
	root.AddCommand(newSettingsCmd(a))

	return root
}
