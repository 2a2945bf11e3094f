package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func chatCMD(cfgPath *string) *cobra.Command {
	var (
		pageID  string
		verbose bool
	)
	chat := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation (/reset clears history, /exit quits)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, os.Stderr)
			if err != nil {
				return err
			}

			conversation := uuid.NewString()
			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())

			fmt.Fprintf(out, "actionmesh chat (model %s). Type /exit to quit.\n", a.mesh.ModelInfo().Name)
			for {
				fmt.Fprint(out, "> ")
				if !in.Scan() {
					fmt.Fprintln(out)
					return in.Err()
				}
				line := strings.TrimSpace(in.Text())
				switch line {
				case "":
					continue
				case "/exit", "/quit":
					return nil
				case "/reset":
					if err := a.mesh.ResetConversation(conversation); err != nil {
						return err
					}
					fmt.Fprintln(out, "(history cleared)")
					continue
				}

				res, err := a.mesh.Chat(cmd.Context(), conversation, line, pageID)
				if err != nil {
					return err
				}
				if verbose {
					for _, l := range res.Logs {
						fmt.Fprintf(out, "  | %s\n", l)
					}
				}
				if res.Success {
					fmt.Fprintln(out, res.Response)
				} else {
					fmt.Fprintf(out, "Error: %s\n", res.Error)
				}
			}
		},
	}
	chat.Flags().StringVar(&pageID, "page-id", "", "identifier of the current page")
	chat.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the audit log of every turn")
	return chat
}
