package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/acrylJonny/metasync/internal/cli/common"
	connectioncmd "github.com/acrylJonny/metasync/internal/cli/connection"
	objectcmd "github.com/acrylJonny/metasync/internal/cli/object"
	repocmd "github.com/acrylJonny/metasync/internal/cli/repo"
	secretcmd "github.com/acrylJonny/metasync/internal/cli/secret"
	versioncmd "github.com/acrylJonny/metasync/internal/cli/version"
)

func NewRootCommand(deps Dependencies) *cobra.Command {
	commandDeps := deps.commandDependencies()
	var globalFlags common.GlobalFlags

	root := &cobra.Command{
		Use:   "metasync",
		Short: "Sync authored metadata with a remote catalog",
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
		Args: cobra.NoArgs,
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			return common.ValidateOutputFormat(globalFlags.Output)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	common.BindGlobalFlags(root, &globalFlags)
	root.PersistentFlags().BoolP("help", "h", false, "help for command")

	root.AddGroup(
		&cobra.Group{ID: "basic", Title: "Basic Commands:"},
		&cobra.Group{ID: "other", Title: "Other Commands:"},
	)

	basicCommands := []*cobra.Command{
		objectcmd.NewStatusCommand(commandDeps, &globalFlags),
		objectcmd.NewTreeCommand(commandDeps, &globalFlags),
		objectcmd.NewPushCommand(commandDeps, &globalFlags),
		objectcmd.NewPullCommand(commandDeps, &globalFlags),
		objectcmd.NewDeleteCommand(commandDeps, &globalFlags),
		objectcmd.NewRefdataCommand(commandDeps, &globalFlags),
		repocmd.NewCommand(commandDeps, &globalFlags),
	}
	for _, command := range basicCommands {
		command.GroupID = "basic"
		root.AddCommand(command)
	}

	otherCommands := []*cobra.Command{
		connectioncmd.NewCommand(commandDeps, &globalFlags),
		secretcmd.NewCommand(commandDeps, &globalFlags),
		versioncmd.NewCommand(commandDeps, &globalFlags),
	}
	for _, command := range otherCommands {
		command.GroupID = "other"
		root.AddCommand(command)
	}

	return root
}

// RequiresConnectionBootstrapPath reports whether a command path needs a
// fully wired connection before it can run. Connection management and
// version/help work without one.
func RequiresConnectionBootstrapPath(commandPath string) bool {
	trimmed := strings.TrimSpace(commandPath)
	switch {
	case trimmed == "" || trimmed == "metasync":
		return false
	case trimmed == "metasync version":
		return false
	case strings.HasPrefix(trimmed, "metasync connection"):
		return false
	case strings.HasPrefix(trimmed, "metasync completion"),
		strings.HasPrefix(trimmed, "metasync help"):
		return false
	default:
		return true
	}
}
