package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v58/github"
	"go.temporal.io/sdk/activity"

	githubClient "github.com/imranansari/render-deploy-wf/github"
	"github.com/imranansari/render-deploy-wf/logging"
)

// GitHubActivities contains GitHub-related activities
type GitHubActivities struct {
	tracker githubClient.Tracker
}

// NewGitHubActivities creates a new instance of GitHub activities
func NewGitHubActivities(tracker githubClient.Tracker) *GitHubActivities {
	return &GitHubActivities{
		tracker: tracker,
	}
}

// CreateGitHubDeployment creates a GitHub deployment mirroring a Render deploy
func (a *GitHubActivities) CreateGitHubDeployment(ctx context.Context, input CreateDeploymentInput) (*CreateDeploymentResult, error) {
	activityInfo := activity.GetInfo(ctx)
	logger := logging.ActivityLogger("CreateGitHubDeployment", activityInfo.WorkflowExecution.ID, activityInfo.WorkflowExecution.RunID)

	logger.Info().
		Str("github_owner", input.GithubOwner).
		Str("github_repo", input.GithubRepo).
		Str("ref", input.Ref).
		Str("environment", input.Environment).
		Str("render_deploy_id", input.RenderDeployID).
		Msg("Creating GitHub deployment")

	payload := map[string]interface{}{
		"triggered_by":      "render-deploy-workflow",
		"created_at":        time.Now().UTC().Format(time.RFC3339),
		"render_service_id": input.RenderServiceID,
		"render_deploy_id":  input.RenderDeployID,
	}
	for k, v := range input.Payload {
		payload[k] = v
	}

	deploymentRequest := &github.DeploymentRequest{
		Ref:                   github.String(input.Ref),
		Task:                  github.String("deploy"),
		Environment:           github.String(input.Environment),
		Description:           github.String(truncateDescription(input.Description, 140)),
		TransientEnvironment:  github.Bool(input.IsTransient),
		ProductionEnvironment: github.Bool(input.Environment == "production"),
		RequiredContexts:      &[]string{}, // Render already built it
		AutoMerge:             github.Bool(false),
		Payload:               payload,
	}

	activity.RecordHeartbeat(ctx, "Calling GitHub API")

	deployment, err := a.tracker.CreateDeployment(ctx, input.GithubOwner, input.GithubRepo, deploymentRequest)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create GitHub deployment")
		return nil, fmt.Errorf("failed to create deployment: %w", err)
	}

	result := &CreateDeploymentResult{
		DeploymentID: deployment.GetID(),
		URL:          deployment.GetURL(),
		Environment:  deployment.GetEnvironment(),
	}

	logger.Info().
		Int64("deployment_id", result.DeploymentID).
		Str("url", result.URL).
		Msg("Successfully created GitHub deployment")

	return result, nil
}

// UpdateGitHubDeploymentStatus updates the status of a deployment
func (a *GitHubActivities) UpdateGitHubDeploymentStatus(ctx context.Context, input UpdateDeploymentStatusInput) error {
	activityInfo := activity.GetInfo(ctx)
	logger := logging.ActivityLogger("UpdateGitHubDeploymentStatus", activityInfo.WorkflowExecution.ID, activityInfo.WorkflowExecution.RunID)

	logger.Info().
		Str("github_owner", input.GithubOwner).
		Str("github_repo", input.GithubRepo).
		Int64("deployment_id", input.DeploymentID).
		Str("state", input.State).
		Msg("Updating GitHub deployment status")

	statusRequest := &github.DeploymentStatusRequest{
		State:        github.String(input.State),
		Description:  github.String(truncateDescription(input.Description, 140)),
		AutoInactive: github.Bool(true), // Automatically mark previous deployments as inactive
	}
	if input.LogURL != "" {
		statusRequest.LogURL = github.String(input.LogURL)
	}
	if input.EnvironmentURL != "" {
		statusRequest.EnvironmentURL = github.String(input.EnvironmentURL)
	}

	activity.RecordHeartbeat(ctx, "Calling GitHub API")

	status, err := a.tracker.CreateDeploymentStatus(ctx, input.GithubOwner, input.GithubRepo, input.DeploymentID, statusRequest)
	if err != nil {
		logger.Error().Err(err).
			Str("state", input.State).
			Msg("Failed to update GitHub deployment status")
		return fmt.Errorf("failed to update deployment status: %w", err)
	}

	logger.Info().
		Str("state", status.GetState()).
		Str("url", status.GetURL()).
		Msg("Successfully updated GitHub deployment status")

	return nil
}

// truncateDescription ensures description doesn't exceed GitHub's limit
func truncateDescription(desc string, maxLen int) string {
	if len(desc) <= maxLen {
		return desc
	}
	return desc[:maxLen-3] + "..."
}
