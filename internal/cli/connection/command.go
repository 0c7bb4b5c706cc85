package connection

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	configdomain "github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/internal/cli/common"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "connection",
		Short: "Manage connections",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newAddCommand(deps),
		newListCommand(deps, globalFlags),
		newUseCommand(deps),
		newRemoveCommand(deps),
		newCurrentCommand(deps, globalFlags),
	)

	return command
}

func newAddCommand(deps common.CommandDependencies) *cobra.Command {
	var file string
	var baseDir string
	var serverURL string
	var token string
	var gitRemote string
	var setCurrent bool

	command := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a connection from flags or a YAML file",
		Example: strings.Join([]string{
			"  metasync connection add dev --base-dir ~/metadata --server-url https://datahub.example.com:8080",
			"  metasync connection add prod --file prod-connection.yaml --set-current",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			connections, err := common.RequireConnections(deps)
			if err != nil {
				return err
			}

			conn, err := resolveNewConnection(args[0], file, baseDir, serverURL, token, gitRemote)
			if err != nil {
				return err
			}

			if err := connections.Create(command.Context(), conn); err != nil {
				return err
			}
			if setCurrent {
				return connections.SetCurrent(command.Context(), conn.Name)
			}
			return nil
		},
	}

	command.Flags().StringVarP(&file, "file", "f", "", "connection YAML file")
	command.Flags().StringVar(&baseDir, "base-dir", "", "local store base directory")
	command.Flags().StringVar(&serverURL, "server-url", "", "remote catalog base URL")
	command.Flags().StringVar(&token, "token", "", "remote catalog bearer token")
	command.Flags().StringVar(&gitRemote, "git-remote", "", "git remote URL for local store sync")
	command.Flags().BoolVar(&setCurrent, "set-current", false, "make this the current connection")

	return command
}

func resolveNewConnection(
	name string,
	file string,
	baseDir string,
	serverURL string,
	token string,
	gitRemote string,
) (configdomain.Connection, error) {
	if file != "" {
		return connectionFromFile(name, file)
	}

	conn := configdomain.Connection{
		Name:  name,
		Store: configdomain.Store{BaseDir: baseDir},
	}
	if gitRemote != "" {
		conn.Store.Git = &configdomain.GitSync{
			Remote: &configdomain.GitRemote{URL: gitRemote},
		}
	}
	if serverURL != "" {
		httpCatalog := &configdomain.HTTPCatalog{BaseURL: serverURL}
		if token != "" {
			httpCatalog.Auth = &configdomain.CatalogAuth{
				BearerToken: &configdomain.BearerTokenAuth{Token: token},
			}
		}
		conn.Catalog = &configdomain.CatalogServer{HTTP: httpCatalog}
	} else if token != "" {
		return configdomain.Connection{}, common.ValidationError("--token requires --server-url", nil)
	}
	return conn, nil
}

func connectionFromFile(name string, file string) (configdomain.Connection, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return configdomain.Connection{}, common.ValidationError("failed to read connection file", err)
	}

	var conn configdomain.Connection
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&conn); err != nil {
		return configdomain.Connection{}, common.ValidationError("failed to decode connection file", err)
	}

	if conn.Name == "" {
		conn.Name = name
	}
	if conn.Name != name {
		return configdomain.Connection{}, common.ValidationError(
			fmt.Sprintf("connection name conflict: positional %q differs from file name %q", name, conn.Name), nil)
	}
	return conn, nil
}

type listEntry struct {
	Name    string `json:"name" yaml:"name"`
	Current bool   `json:"current" yaml:"current"`
	BaseDir string `json:"base_dir" yaml:"base-dir"`
	Server  string `json:"server,omitempty" yaml:"server,omitempty"`
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connections",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			connections, err := common.RequireConnections(deps)
			if err != nil {
				return err
			}

			all, err := connections.List(command.Context())
			if err != nil {
				return err
			}
			current, err := connections.GetCurrent(command.Context())
			if err != nil {
				current = configdomain.Connection{}
			}

			entries := make([]listEntry, 0, len(all))
			for _, conn := range all {
				entry := listEntry{
					Name:    conn.Name,
					Current: conn.Name == current.Name,
					BaseDir: conn.Store.BaseDir,
				}
				if conn.Catalog != nil && conn.Catalog.HTTP != nil {
					entry.Server = conn.Catalog.HTTP.BaseURL
				}
				entries = append(entries, entry)
			}

			return common.WriteOutput(command, globalFlags.Output, entries, renderListText)
		},
	}
}

func renderListText(w io.Writer, entries []listEntry) error {
	for _, entry := range entries {
		marker := " "
		if entry.Current {
			marker = "*"
		}
		server := entry.Server
		if server == "" {
			server = "(store only)"
		}
		if _, err := fmt.Fprintf(w, "%s %s\t%s\t%s\n", marker, entry.Name, entry.BaseDir, server); err != nil {
			return err
		}
	}
	return nil
}

func newUseCommand(deps common.CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the current connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			connections, err := common.RequireConnections(deps)
			if err != nil {
				return err
			}
			return connections.SetCurrent(command.Context(), args[0])
		},
	}
}

func newRemoveCommand(deps common.CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			connections, err := common.RequireConnections(deps)
			if err != nil {
				return err
			}
			return connections.Delete(command.Context(), args[0])
		},
	}
}

func newCurrentCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current connection name",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			connections, err := common.RequireConnections(deps)
			if err != nil {
				return err
			}
			current, err := connections.GetCurrent(command.Context())
			if err != nil {
				return err
			}
			return common.WriteText(command, globalFlags.Output, current.Name)
		},
	}
}
