package object

import (
	"github.com/spf13/cobra"

	"github.com/acrylJonny/metasync/internal/cli/common"
)

func NewRefdataCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refdata",
		Short: "Show the users, groups, and ownership types known to the remote catalog",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			orchestratorService, err := common.RequireOrchestrator(deps)
			if err != nil {
				return err
			}

			snapshot, err := orchestratorService.GetReferenceData(command.Context())
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags.Output, snapshot, renderReferenceDataText)
		},
	}
}
