package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/imranansari/render-deploy-wf/activities"
)

// githubMirror drives the GitHub deployment that shadows one Render deploy.
// GitHub failures are logged and never fail the workflow.
type githubMirror struct {
	ctx          workflow.Context
	logger       log.Logger
	input        DeploymentWorkflowInput
	trigger      *activities.TriggerDeployResult
	deploymentID int64
}

func newGitHubMirror(ctx workflow.Context, input DeploymentWorkflowInput, trigger *activities.TriggerDeployResult) *githubMirror {
	retry := input.GitHubRetry
	policy := &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    30 * time.Second,
		MaximumAttempts:    3,
	}
	if retry.MaxAttempts > 0 {
		policy.MaximumAttempts = retry.MaxAttempts
	}
	if retry.InitialInterval > 0 {
		policy.InitialInterval = retry.InitialInterval
	}
	if retry.MaximumInterval > 0 {
		policy.MaximumInterval = retry.MaximumInterval
	}
	if retry.BackoffCoefficient >= 1 {
		policy.BackoffCoefficient = retry.BackoffCoefficient
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy:         policy,
	})

	return &githubMirror{
		ctx:     ctx,
		logger:  workflow.GetLogger(ctx),
		input:   input,
		trigger: trigger,
	}
}

func (m *githubMirror) enabled() bool {
	return m.input.GithubOwner != "" && m.input.GithubRepo != "" && m.ref() != ""
}

// active reports whether a GitHub deployment exists to update.
func (m *githubMirror) active() bool {
	return m.deploymentID != 0
}

func (m *githubMirror) ref() string {
	if m.input.CommitSHA != "" {
		return m.input.CommitSHA
	}
	return m.trigger.CommitSHA
}

func (m *githubMirror) create() (int64, error) {
	description := m.input.Description
	if description == "" {
		description = fmt.Sprintf("Render deploy %s", m.trigger.DeployID)
	}

	var created *activities.CreateDeploymentResult
	err := workflow.ExecuteActivity(m.ctx, "CreateGitHubDeployment", activities.CreateDeploymentInput{
		GithubOwner:     m.input.GithubOwner,
		GithubRepo:      m.input.GithubRepo,
		Ref:             m.ref(),
		Environment:     m.input.Environment,
		Description:     description,
		IsTransient:     m.input.IsTransient,
		RenderDeployID:  m.trigger.DeployID,
		RenderServiceID: m.trigger.ServiceID,
		Payload:         m.input.Payload,
	}).Get(m.ctx, &created)
	if err != nil {
		return 0, err
	}

	m.deploymentID = created.DeploymentID
	m.logger.Info("GitHub deployment created", "deployment_id", created.DeploymentID)
	return created.DeploymentID, nil
}

// update reports whether the status was written.
func (m *githubMirror) update(state, description string) bool {
	environmentURL := ""
	if state == "success" {
		environmentURL = m.input.EnvironmentURL
	}

	err := workflow.ExecuteActivity(m.ctx, "UpdateGitHubDeploymentStatus", activities.UpdateDeploymentStatusInput{
		GithubOwner:    m.input.GithubOwner,
		GithubRepo:     m.input.GithubRepo,
		DeploymentID:   m.deploymentID,
		State:          state,
		Description:    description,
		LogURL:         m.trigger.DashboardURL,
		EnvironmentURL: environmentURL,
	}).Get(m.ctx, nil)
	if err != nil {
		m.logger.Error("Failed to update GitHub deployment status", "state", state, "error", err)
		return false
	}
	m.logger.Info("Updated GitHub deployment status", "state", state)
	return true
}
