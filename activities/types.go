package activities

import (
	"time"

	"github.com/imranansari/render-deploy-wf/render"
)

// TriggerDeployResult represents the result of triggering a Render deploy
type TriggerDeployResult struct {
	ServiceID    string     `json:"service_id"`
	DeployID     string     `json:"deploy_id"`
	Status       string     `json:"status"`
	CommitSHA    string     `json:"commit_sha,omitempty"`
	DashboardURL string     `json:"dashboard_url"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// GetDeployStatusInput represents input for a Render status check
type GetDeployStatusInput struct {
	DeployID string `json:"deploy_id"`
}

// DeployStatusResult represents the current state of a Render deploy
type DeployStatusResult struct {
	Status     string     `json:"status"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Terminal   bool       `json:"terminal"`
	Failed     bool       `json:"failed"`
}

// FetchLogsInput represents input for fetching Render service logs
type FetchLogsInput struct {
	TailLines int `json:"tail_lines"`
}

// FetchLogsResult holds the last TailLines log entries
type FetchLogsResult struct {
	Entries      []render.LogEntry `json:"entries"`
	Total        int               `json:"total"`
	Unrecognized bool              `json:"unrecognized,omitempty"`
}

// CreateDeploymentInput represents input for creating a deployment
type CreateDeploymentInput struct {
	GithubOwner     string            `json:"github_owner"`
	GithubRepo      string            `json:"github_repo"`
	Ref             string            `json:"ref"`
	Environment     string            `json:"environment"`
	Description     string            `json:"description"`
	IsTransient     bool              `json:"is_transient"`
	RenderServiceID string            `json:"render_service_id"`
	RenderDeployID  string            `json:"render_deploy_id"`
	Payload         map[string]string `json:"payload"`
}

// CreateDeploymentResult represents the result of creating a deployment
type CreateDeploymentResult struct {
	DeploymentID int64  `json:"deployment_id"`
	URL          string `json:"url"`
	Environment  string `json:"environment"`
}

// UpdateDeploymentStatusInput represents input for updating deployment status
type UpdateDeploymentStatusInput struct {
	GithubOwner    string `json:"github_owner"`
	GithubRepo     string `json:"github_repo"`
	DeploymentID   int64  `json:"deployment_id"`
	State          string `json:"state"`
	Description    string `json:"description"`
	LogURL         string `json:"log_url"`
	EnvironmentURL string `json:"environment_url"`
}
