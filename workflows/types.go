package workflows

import (
	"time"

	"github.com/imranansari/render-deploy-wf/render"
)

// DeploymentWorkflowInput represents the input for the Render deployment workflow
type DeploymentWorkflowInput struct {
	// Render polling
	PollInterval time.Duration `json:"poll_interval,omitempty"`
	MaxWait      time.Duration `json:"max_wait,omitempty"`
	LogTailLines int           `json:"log_tail_lines,omitempty"`

	// GitHub mirroring, skipped when owner or repo is empty
	GithubOwner    string            `json:"github_owner,omitempty"`
	GithubRepo     string            `json:"github_repo,omitempty"`
	CommitSHA      string            `json:"commit_sha,omitempty"`
	Environment    string            `json:"environment,omitempty"`
	Description    string            `json:"description,omitempty"`
	IsTransient    bool              `json:"is_transient,omitempty"`
	EnvironmentURL string            `json:"environment_url,omitempty"`
	Payload        map[string]string `json:"payload,omitempty"`
	GitHubRetry    RetrySettings     `json:"github_retry,omitempty"`
}

// RetrySettings tunes retries of GitHub activities. Zero values use defaults.
type RetrySettings struct {
	MaxAttempts        int32         `json:"max_attempts,omitempty"`
	InitialInterval    time.Duration `json:"initial_interval,omitempty"`
	MaximumInterval    time.Duration `json:"maximum_interval,omitempty"`
	BackoffCoefficient float64       `json:"backoff_coefficient,omitempty"`
}

// DeploymentWorkflowResult represents the result of the deployment workflow
type DeploymentWorkflowResult struct {
	DeployID           string            `json:"deploy_id"`
	FinalStatus        string            `json:"final_status"`
	FinishedAt         *time.Time        `json:"finished_at,omitempty"`
	DashboardURL       string            `json:"dashboard_url"`
	GitHubDeploymentID int64             `json:"github_deployment_id,omitempty"`
	StatusChecks       int               `json:"status_checks"`
	StatusUpdates      int               `json:"status_updates"`
	LogTail            []render.LogEntry `json:"log_tail,omitempty"`
	CompletedAt        time.Time         `json:"completed_at"`
	TotalDuration      string            `json:"total_duration"`
}

// Succeeded reports whether the deploy went live.
func (r *DeploymentWorkflowResult) Succeeded() bool {
	return r.FinalStatus == render.StatusLive
}
