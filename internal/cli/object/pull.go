package object

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/acrylJonny/metasync/internal/cli/common"
	"github.com/acrylJonny/metasync/orchestrator"
)

func NewPullCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <urn> [urn...]",
		Short: "Pull remote objects into the local store",
		Example: strings.Join([]string{
			"  metasync pull urn:li:tag:pii",
			"  metasync pull urn:li:glossaryNode:finance urn:li:glossaryTerm:revenue",
		}, "\n"),
		Args: cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			orchestratorService, err := common.RequireOrchestrator(deps)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				pulled, err := orchestratorService.Pull(command.Context(), args[0])
				if err != nil {
					return err
				}
				return common.WriteOutput(command, globalFlags.Output, pulled, renderObjectText)
			}

			result := orchestrator.BulkResult{}
			for _, urn := range args {
				if _, err := orchestratorService.Pull(command.Context(), urn); err != nil {
					result.Failed++
					result.Errors = append(result.Errors, orchestrator.ItemError{Item: urn, Reason: err})
					continue
				}
				result.Succeeded++
			}
			if err := common.WriteOutput(command, globalFlags.Output, result, renderBulkResultText); err != nil {
				return err
			}
			return bulkResultError("pull", result)
		},
	}
}
