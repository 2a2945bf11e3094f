// Command actionmesh runs the action-plan orchestrator as an HTTP API, as a
// one-shot CLI or as an interactive chat.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "actionmesh",
		Short:         "Plan and execute tool calls from natural-language requests",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default ./actionmesh.yaml or ./config/actionmesh.yaml)")

	root.AddCommand(serveCMD(&cfgPath), runCMD(&cfgPath), chatCMD(&cfgPath), probeCMD(&cfgPath))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
