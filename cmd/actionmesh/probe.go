package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func probeCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check connectivity to the configured tool endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, os.Stderr)
			if err != nil {
				return err
			}
			if !a.probe(cmd.Context()) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: unreachable\n", a.cfg.MCP.Endpoint)
				return errors.New("tool endpoint unreachable")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", a.cfg.MCP.Endpoint)
			return nil
		},
	}
}
