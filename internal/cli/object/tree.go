package object

import (
	"github.com/spf13/cobra"

	"github.com/acrylJonny/metasync/internal/cli/common"
)

func NewTreeCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the merged glossary hierarchy of both sides",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			orchestratorService, err := common.RequireOrchestrator(deps)
			if err != nil {
				return err
			}

			tree, err := orchestratorService.ResolveHierarchy(command.Context())
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags.Output, tree, renderTreeText)
		},
	}
}
