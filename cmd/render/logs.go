package main

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/imranansari/render-deploy-wf/render"
)

func newLogsCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the service logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				printError(cmd, "creating Render client", err)
				return err
			}

			printf(cmd, "Fetching deployment logs...\n")

			entries, err := svc.ListLogs(cmd.Context())
			if errors.Is(err, render.ErrUnrecognizedResponse) {
				if strict {
					printError(cmd, "fetching logs", err)
					return err
				}
				warn := color.New(color.FgYellow).SprintFunc()
				printf(cmd, "%s the logs response was not a list of entries\n", warn("Warning:"))
				return nil
			}
			if err != nil {
				printError(cmd, "fetching logs", err)
				return err
			}

			count := 0
			for entry := range entries {
				printf(cmd, "[%s] %s\n", formatTime(entry.Timestamp), entry.Message)
				count++
			}
			if count == 0 {
				printf(cmd, "No log entries.\n")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the logs response is not recognized")
	return cmd
}
