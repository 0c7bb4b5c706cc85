package common

import "github.com/spf13/cobra"

type GlobalFlags struct {
	Connection string
	Output     string
	NoColor    bool
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVarP(&flags.Connection, "connection", "c", "", "connection name")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
}
