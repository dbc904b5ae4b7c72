package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imranansari/render-deploy-wf/render"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [deploy-id]",
		Short: "Show the status of a deploy",
		Long: `Show the status of a deploy. The deploy ID defaults to RENDER_DEPLOY_ID.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deployID := os.Getenv("RENDER_DEPLOY_ID")
			if len(args) == 1 {
				deployID = args[0]
			}

			svc, err := a.service()
			if err != nil {
				printError(cmd, "creating Render client", err)
				return err
			}

			printf(cmd, "Checking deployment status...\n")

			status, err := svc.GetDeployStatus(cmd.Context(), deployID)
			if err != nil {
				printError(cmd, fmt.Sprintf("checking deploy %q", deployID), err)
				return err
			}

			printf(cmd, "Deployment Status: %s\n", statusColor(status.Status).Sprint(status.Status))
			if status.FinishedAt != nil {
				printf(cmd, "Finished at: %s\n", formatTime(*status.FinishedAt))
			}
			printf(cmd, "Dashboard: %s\n", render.DashboardURL(svc.ServiceID(), deployID))
			return nil
		},
	}
}
