package object

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/internal/cli/common"
	"github.com/acrylJonny/metasync/orchestrator"
)

func NewPushCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "push <local-id> [local-id...]",
		Short: "Push locally authored objects to the remote catalog",
		Example: strings.Join([]string{
			"  metasync push 7f3a9c",
			"  metasync push 7f3a9c 81d2e0 90cc41",
		}, "\n"),
		Args: cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			orchestratorService, err := common.RequireOrchestrator(deps)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				pushed, err := orchestratorService.Push(command.Context(), args[0])
				if err != nil {
					return err
				}
				return common.WriteOutput(command, globalFlags.Output, pushed, renderObjectText)
			}

			result := orchestratorService.BulkPush(command.Context(), args)
			if err := common.WriteOutput(command, globalFlags.Output, result, renderBulkResultText); err != nil {
				return err
			}
			return bulkResultError("push", result)
		},
	}
}

func renderBulkResultText(w io.Writer, result orchestrator.BulkResult) error {
	if _, err := fmt.Fprintf(w, "%d succeeded, %d failed\n", result.Succeeded, result.Failed); err != nil {
		return err
	}
	for _, itemError := range result.Errors {
		if _, err := fmt.Fprintf(w, "  %s: %v\n", itemError.Item, itemError.Reason); err != nil {
			return err
		}
	}
	return nil
}

// bulkResultError surfaces a failed bulk run as one error carrying the first
// item's fault category, so the exit code reflects the underlying failure.
func bulkResultError(operation string, result orchestrator.BulkResult) error {
	if result.Failed == 0 {
		return nil
	}

	category := faults.InternalError
	var cause error
	if len(result.Errors) > 0 {
		cause = result.Errors[0].Reason
		if resolved, ok := faults.Category(cause); ok {
			category = resolved
		}
	}
	return faults.NewTypedError(category,
		fmt.Sprintf("%s failed for %d of %d items", operation, result.Failed, result.Succeeded+result.Failed),
		cause)
}
