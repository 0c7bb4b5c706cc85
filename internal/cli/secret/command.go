package secret

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acrylJonny/metasync/internal/cli/common"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "secret",
		Short: "Manage sealed secrets for the selected connection",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newSetCommand(deps),
		newGetCommand(deps, globalFlags),
		newListCommand(deps, globalFlags),
		newDeleteCommand(deps),
	)

	return command
}

func newSetCommand(deps common.CommandDependencies) *cobra.Command {
	var value string

	command := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a secret value",
		Example: strings.Join([]string{
			"  metasync secret set catalog-token --value tok-123",
			"  metasync secret set catalog-token",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			secretStore, err := common.RequireSecrets(deps)
			if err != nil {
				return err
			}

			secretValue := value
			if secretValue == "" {
				secretValue, err = common.PromptInput(command, "Secret value", true)
				if err != nil {
					return err
				}
			}
			return secretStore.Store(command.Context(), args[0], secretValue)
		},
	}

	command.Flags().StringVar(&value, "value", "", "secret value (prompted interactively when omitted)")
	return command
}

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a secret value",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			secretStore, err := common.RequireSecrets(deps)
			if err != nil {
				return err
			}

			value, err := secretStore.Get(command.Context(), args[0])
			if err != nil {
				return err
			}
			return common.WriteText(command, globalFlags.Output, value)
		},
	}
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List secret keys",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			secretStore, err := common.RequireSecrets(deps)
			if err != nil {
				return err
			}

			keys, err := secretStore.List(command.Context())
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags.Output, keys, func(w io.Writer, value []string) error {
				for _, key := range value {
					if _, err := io.WriteString(w, key+"\n"); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newDeleteCommand(deps common.CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			secretStore, err := common.RequireSecrets(deps)
			if err != nil {
				return err
			}
			return secretStore.Delete(command.Context(), args[0])
		},
	}
}
