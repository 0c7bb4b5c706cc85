package object

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acrylJonny/metasync/internal/cli/common"
	"github.com/acrylJonny/metasync/orchestrator"
)

func NewDeleteCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var scope string
	var confirmed bool

	command := &cobra.Command{
		Use:   "delete <local-id|urn> [local-id|urn...]",
		Short: "Delete objects from the local store, the remote catalog, or both",
		Example: strings.Join([]string{
			"  metasync delete urn:li:tag:deprecated --scope remote --confirm-delete",
			"  metasync delete 7f3a9c --scope local --confirm-delete",
			"  metasync delete 7f3a9c 81d2e0",
		}, "\n"),
		Args: cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			orchestratorService, err := common.RequireOrchestrator(deps)
			if err != nil {
				return err
			}

			deleteScope, err := resolveDeleteScope(scope)
			if err != nil {
				return err
			}

			refs := make([]orchestrator.Ref, 0, len(args))
			for _, arg := range args {
				refs = append(refs, refFromArg(arg))
			}

			if !confirmed {
				confirmed, err = confirmDelete(command, refs, deleteScope)
				if err != nil {
					return err
				}
				if !confirmed {
					return common.WriteText(command, common.OutputText, "delete aborted")
				}
			}

			if len(refs) == 1 {
				return orchestratorService.Delete(command.Context(), refs[0], deleteScope)
			}

			result := orchestratorService.BulkDelete(command.Context(), refs, deleteScope)
			if err := common.WriteOutput(command, globalFlags.Output, result, renderBulkResultText); err != nil {
				return err
			}
			return bulkResultError("delete", result)
		},
	}

	command.Flags().StringVarP(&scope, "scope", "s", "both", "delete scope: local|remote|both")
	command.Flags().BoolVar(&confirmed, "confirm-delete", false, "skip the interactive confirmation")

	return command
}

func resolveDeleteScope(scope string) (orchestrator.DeleteScope, error) {
	switch strings.TrimSpace(scope) {
	case "local":
		return orchestrator.DeleteLocalOnly, nil
	case "remote":
		return orchestrator.DeleteRemoteOnly, nil
	case "both", "":
		return orchestrator.DeleteBoth, nil
	default:
		return "", common.ValidationError("invalid delete scope: use local, remote, or both", nil)
	}
}

// refFromArg treats anything with a urn prefix as a remote identity and
// everything else as a local id.
func refFromArg(arg string) orchestrator.Ref {
	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "urn:") {
		return orchestrator.Ref{URN: trimmed}
	}
	return orchestrator.Ref{LocalID: trimmed}
}

func confirmDelete(command *cobra.Command, refs []orchestrator.Ref, scope orchestrator.DeleteScope) (bool, error) {
	if !common.IsInteractiveTerminal(command) {
		return false, common.ValidationError(
			"refusing to delete without confirmation: pass --confirm-delete or run interactively", nil)
	}

	prompt := fmt.Sprintf("Delete %d object(s) with scope %s?", len(refs), scope)
	if len(refs) == 1 {
		prompt = fmt.Sprintf("Delete %s with scope %s?", refs[0].Key(), scope)
	}
	return common.PromptConfirm(command, prompt, false)
}
