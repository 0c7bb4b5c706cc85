package repo

import (
	"github.com/spf13/cobra"

	"github.com/acrylJonny/metasync/internal/cli/common"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	_ = globalFlags

	command := &cobra.Command{
		Use:   "repo",
		Short: "Manage the git mirror of the local store",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newInitCommand(deps),
		newCommitCommand(deps),
		newPushCommand(deps),
	)

	return command
}

func newInitCommand(deps common.CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the git repository",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			changeSync, err := common.RequireChangeSync(deps)
			if err != nil {
				return err
			}
			return changeSync.Init(command.Context())
		},
	}
}

func newCommitCommand(deps common.CommandDependencies) *cobra.Command {
	var message string

	command := &cobra.Command{
		Use:   "commit",
		Short: "Commit pending local store changes",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			changeSync, err := common.RequireChangeSync(deps)
			if err != nil {
				return err
			}
			return changeSync.Commit(command.Context(), message)
		},
	}

	command.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return command
}

func newPushCommand(deps common.CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push committed changes to the configured remote",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			changeSync, err := common.RequireChangeSync(deps)
			if err != nil {
				return err
			}
			return changeSync.Push(command.Context())
		},
	}
}
