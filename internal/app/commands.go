package app

import (
	"context"

	"github.com/spf13/cobra"

	"napclean/internal/uninstall"
)

// Execute builds the command tree and runs it with the supplied context.
func (a *App) Execute(ctx context.Context) error {
	return a.rootCommand().ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	var targetsPath string

	root := &cobra.Command{
		Use:           "napclean",
		Short:         "Remove the NapCat chat stack from a Debian system",
		Long:          "napclean uninstalls the NapCat shell deployment (linuxqq and its support libraries) or the docker deployment, runs the dependency cleanup, and deletes residual files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd.Context(), targetsPath)
		},
	}

	root.PersistentFlags().StringVar(&targetsPath, "targets", "", "path to a profile override file")

	root.AddCommand(a.removeCommand(&targetsPath))
	root.AddCommand(a.statusCommand(&targetsPath))
	root.AddCommand(a.historyCommand())

	return root
}

func (a *App) removeCommand(targetsPath *string) *cobra.Command {
	var (
		purge     bool
		keepFiles bool
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "remove [profile]",
		Short: "Run the uninstaller for a profile (default: shell)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profileName := "shell"
			if len(args) == 1 {
				profileName = args[0]
			}

			opts := uninstall.Options{
				ForcePurge: purge,
				KeepFiles:  keepFiles,
			}
			return a.removeByName(cmd.Context(), profileName, *targetsPath, opts, assumeYes)
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "also delete package configuration files")
	cmd.Flags().BoolVar(&keepFiles, "keep-files", false, "skip residual path deletion")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func (a *App) statusCommand(targetsPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status [profile]",
		Short: "Report the install state of a profile's packages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profileName := "shell"
			if len(args) == 1 {
				profileName = args[0]
			}
			return a.runStatus(profileName, *targetsPath)
		},
	}
}

func (a *App) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent uninstall runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of runs to list")

	return cmd
}
