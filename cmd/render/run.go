package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/imranansari/render-deploy-wf/config"
	"github.com/imranansari/render-deploy-wf/logging"
	"github.com/imranansari/render-deploy-wf/workflows"
)

// workflowRunner starts the deployment workflow and waits for its result.
type workflowRunner func(ctx context.Context, cfg *config.Config, input workflows.DeploymentWorkflowInput) (*workflows.DeploymentWorkflowResult, error)

func newRunCmd(a *app) *cobra.Command {
	var (
		commitSHA      string
		environmentURL string
		description    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Deploy through the Temporal worker and wait for the result",
		Long: `Start the Render deployment workflow on the configured Temporal task queue.
The workflow triggers a deploy, polls it until it settles and, when GitHub
mirroring is configured, records it as a GitHub deployment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := workflowInput(a.cfg)
			if commitSHA != "" {
				input.CommitSHA = commitSHA
			}
			if environmentURL != "" {
				input.EnvironmentURL = environmentURL
			}
			if description != "" {
				input.Description = description
			}

			printf(cmd, "Starting deployment workflow for %s...\n", a.cfg.Render.ServiceID)

			result, err := a.runWorkflow(cmd.Context(), a.cfg, input)
			if err != nil {
				printError(cmd, "running deployment workflow", err)
				return err
			}

			printf(cmd, "Deploy ID: %s\n", result.DeployID)
			printf(cmd, "Final Status: %s\n", statusColor(result.FinalStatus).Sprint(result.FinalStatus))
			if result.FinishedAt != nil {
				printf(cmd, "Finished at: %s\n", formatTime(*result.FinishedAt))
			}
			printf(cmd, "Duration: %s (%d status checks)\n", result.TotalDuration, result.StatusChecks)
			printf(cmd, "Dashboard: %s\n", result.DashboardURL)
			if result.GitHubDeploymentID != 0 {
				printf(cmd, "GitHub Deployment: %d\n", result.GitHubDeploymentID)
			}
			for _, entry := range result.LogTail {
				printf(cmd, "[%s] %s\n", formatTime(entry.Timestamp), entry.Message)
			}

			if !result.Succeeded() {
				return fmt.Errorf("deploy %s finished with status %s", result.DeployID, result.FinalStatus)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&commitSHA, "commit", "", "Commit SHA for the GitHub deployment (defaults to the commit Render builds)")
	cmd.Flags().StringVar(&environmentURL, "environment-url", "", "URL reported on the GitHub deployment once live")
	cmd.Flags().StringVar(&description, "description", "", "GitHub deployment description")
	return cmd
}

func workflowInput(cfg *config.Config) workflows.DeploymentWorkflowInput {
	input := workflows.DeploymentWorkflowInput{
		PollInterval: cfg.Render.PollInterval,
		MaxWait:      cfg.Render.MaxWait,
		LogTailLines: cfg.Render.LogTail,
	}
	if cfg.GitHub.Enabled() {
		input.GithubOwner = cfg.GitHub.Owner
		input.GithubRepo = cfg.GitHub.Repo
		input.Environment = cfg.GitHub.Environment
		input.IsTransient = config.IsTransient(cfg.GitHub.Environment)
		input.GitHubRetry = workflows.RetrySettings{
			MaxAttempts:        int32(cfg.GitHub.RateLimit.MaxRetries),
			InitialInterval:    cfg.GitHub.RateLimit.InitialBackoff,
			MaximumInterval:    cfg.GitHub.RateLimit.MaxBackoff,
			BackoffCoefficient: cfg.GitHub.RateLimit.BackoffMultiplier,
		}
	}
	return input
}

func runOnTemporal(ctx context.Context, cfg *config.Config, input workflows.DeploymentWorkflowInput) (*workflows.DeploymentWorkflowResult, error) {
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	workflowOptions := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("render-deploy-%s-%s", cfg.Render.ServiceID, time.Now().Format("20060102-150405")),
		TaskQueue: cfg.Temporal.TaskQueue,
	}

	workflowRun, err := temporalClient.ExecuteWorkflow(ctx, workflowOptions, workflows.RenderDeploymentWorkflow, input)
	if err != nil {
		return nil, fmt.Errorf("failed to start workflow: %w", err)
	}

	logger := logging.WorkflowLogger(workflowRun.GetID(), workflowRun.GetRunID())
	logger.Info().
		Str("task_queue", cfg.Temporal.TaskQueue).
		Msg("Workflow started successfully")

	var result workflows.DeploymentWorkflowResult
	if err := workflowRun.Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("workflow %s failed: %w", workflowRun.GetID(), err)
	}
	return &result, nil
}
