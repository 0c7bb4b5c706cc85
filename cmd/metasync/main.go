package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/core"
	"github.com/acrylJonny/metasync/internal/cli"
)

func main() {
	args := os.Args[1:]
	bootstrap := core.BootstrapConfig{Logger: newStderrLogger()}

	deps := cli.Dependencies{
		Connections: core.NewConnectionService(bootstrap),
	}
	if !shouldSkipConnectionBootstrap(args) {
		metasyncContext, err := core.NewMetasyncContext(
			bootstrap,
			config.ConnectionSelection{Name: connectionNameFromArgs(args)},
		)
		if err != nil {
			if !isShellCompletionInvocation(args) {
				_, _ = fmt.Fprintln(os.Stderr, err)
				os.Exit(cli.ExitCodeForError(err))
			}
		} else {
			deps = cli.Dependencies{
				Orchestrator: metasyncContext.Orchestrator,
				Connections:  metasyncContext.Connections,
				Store:        metasyncContext.Store,
				ChangeSync:   metasyncContext.ChangeSync,
				Catalog:      metasyncContext.Catalog,
				Secrets:      metasyncContext.Secrets,
			}
		}
	}

	if err := cli.Execute(deps); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}

func newStderrLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		_, _ = fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{})
}

func connectionNameFromArgs(args []string) string {
	for idx := 0; idx < len(args); idx++ {
		current := args[idx]

		if current == "--connection" || current == "-c" {
			if idx+1 < len(args) {
				return args[idx+1]
			}
			return ""
		}
		if strings.HasPrefix(current, "--connection=") {
			return strings.TrimPrefix(current, "--connection=")
		}
	}

	return ""
}

func isHelpInvocation(args []string) bool {
	if len(args) == 0 {
		return true
	}
	if args[0] == "help" {
		return true
	}

	for _, current := range args {
		if current == "--" {
			break
		}
		if current == "--help" || current == "-h" {
			return true
		}
	}

	return false
}

func isCompletionScriptInvocation(args []string) bool {
	if len(args) == 0 {
		return false
	}
	return args[0] == "completion"
}

func isShellCompletionInvocation(args []string) bool {
	if len(args) == 0 {
		return false
	}
	return args[0] == "__complete" || args[0] == "__completeNoDesc"
}

func shouldSkipConnectionBootstrap(args []string) bool {
	if isHelpInvocation(args) {
		return true
	}
	if isCompletionScriptInvocation(args) || isShellCompletionInvocation(args) {
		return true
	}

	commandPath, ok := resolveRunnableCommandPath(args)
	if !ok {
		return true
	}
	return !cli.RequiresConnectionBootstrapPath(commandPath)
}

func resolveRunnableCommandPath(args []string) (string, bool) {
	probe := cli.NewRootCommand(cli.Dependencies{})
	command, _, err := probe.Find(args)
	if err != nil || command == nil {
		return "", false
	}
	if !command.Runnable() {
		return "", false
	}
	return strings.TrimSpace(command.CommandPath()), true
}
