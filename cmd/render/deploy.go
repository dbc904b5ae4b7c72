package main

import (
	"github.com/spf13/cobra"
)

func newDeployCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Trigger a new deploy of the service",
		Long: `Start a new deploy of the configured Render service. Every call starts
a real deploy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				printError(cmd, "creating Render client", err)
				return err
			}

			printf(cmd, "Triggering deploy of %s...\n", svc.ServiceID())

			deploy, err := svc.TriggerDeploy(cmd.Context())
			if err != nil {
				printError(cmd, "triggering deploy", err)
				return err
			}

			printf(cmd, "Deployment triggered successfully!\n")
			printf(cmd, "Deploy ID: %s\n", deploy.ID)
			printf(cmd, "Status: %s\n", statusColor(deploy.Status).Sprint(deploy.Status))
			if deploy.Commit != nil && deploy.Commit.ID != "" {
				printf(cmd, "Commit: %s\n", deploy.Commit.ID)
			}
			return nil
		},
	}
}
