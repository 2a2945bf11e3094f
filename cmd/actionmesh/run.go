package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/hupe1980/actionmesh/runner"
	"github.com/spf13/cobra"
)

func runCMD(cfgPath *string) *cobra.Command {
	var pageID string
	run := &cobra.Command{
		Use:   "run <prompt>",
		Short: "Run a single request and print the outcome as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, os.Stderr)
			if err != nil {
				return err
			}

			req := runner.Request{Prompt: strings.Join(args, " ")}
			if pageID != "" {
				req.PageContext = &runner.PageContext{PageInfo: &runner.PageInfo{ID: pageID}}
			}

			out := a.mesh.Run(cmd.Context(), req)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			if !out.Success {
				return errors.New(out.Error)
			}
			return nil
		},
	}
	run.Flags().StringVar(&pageID, "page-id", "", "identifier of the current page")
	return run
}
