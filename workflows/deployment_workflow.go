package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/imranansari/render-deploy-wf/activities"
	"github.com/imranansari/render-deploy-wf/render"
)

const (
	DefaultPollInterval = 15 * time.Second
	DefaultMaxWait      = 30 * time.Minute
	DefaultLogTailLines = 50

	// FinalStatusTimedOut is reported when the deploy is still running at MaxWait
	FinalStatusTimedOut = "timed_out"
)

// RenderDeploymentWorkflow triggers a Render deploy, waits for it to settle
// and mirrors its progress to a GitHub deployment.
func RenderDeploymentWorkflow(ctx workflow.Context, input DeploymentWorkflowInput) (*DeploymentWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	applyDefaults(&input)

	result := &DeploymentWorkflowResult{}
	startTime := workflow.Now(ctx)

	// 1. Trigger. A retried trigger would start a second deploy.
	triggerCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	logger.Info("Triggering Render deploy")

	var trigger *activities.TriggerDeployResult
	if err := workflow.ExecuteActivity(triggerCtx, "TriggerRenderDeploy").Get(ctx, &trigger); err != nil {
		logger.Error("Failed to trigger Render deploy", "error", err)
		return nil, fmt.Errorf("failed to trigger deploy: %w", err)
	}

	result.DeployID = trigger.DeployID
	result.FinalStatus = trigger.Status
	result.DashboardURL = trigger.DashboardURL
	logger.Info("Render deploy triggered", "deploy_id", trigger.DeployID, "status", trigger.Status)

	// 2. Open a GitHub deployment
	mirror := newGitHubMirror(ctx, input, trigger)
	if mirror.enabled() {
		if id, err := mirror.create(); err != nil {
			logger.Error("Failed to create GitHub deployment", "error", err)
		} else {
			result.GitHubDeploymentID = id
			if mirror.update("in_progress", fmt.Sprintf("Render deploy %s started", trigger.DeployID)) {
				result.StatusUpdates++
			}
		}
	}

	// 3. Poll until the deploy settles
	pollCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{"ConfigurationError", "InvalidArgument", "AuthenticationError", "DecodingError"},
		},
	})

	deadline := startTime.Add(input.MaxWait)
	settled := render.IsTerminal(trigger.Status)
	for !settled {
		if !workflow.Now(ctx).Before(deadline) {
			result.FinalStatus = FinalStatusTimedOut
			logger.Warn("Render deploy did not settle in time", "deploy_id", trigger.DeployID, "max_wait", input.MaxWait.String())
			break
		}
		if err := workflow.Sleep(ctx, input.PollInterval); err != nil {
			return nil, err
		}

		var status *activities.DeployStatusResult
		err := workflow.ExecuteActivity(pollCtx, "GetRenderDeployStatus", activities.GetDeployStatusInput{
			DeployID: trigger.DeployID,
		}).Get(ctx, &status)
		result.StatusChecks++
		if err != nil {
			logger.Error("Failed to get Render deploy status", "error", err)
			if mirror.active() {
				mirror.update("error", "Lost track of Render deploy")
			}
			return nil, fmt.Errorf("failed to get deploy status: %w", err)
		}

		if status.Status != result.FinalStatus {
			logger.Info("Render deploy status changed", "from", result.FinalStatus, "to", status.Status)
		}
		result.FinalStatus = status.Status
		result.FinishedAt = status.FinishedAt
		settled = status.Terminal
	}

	// 4. Keep the log tail of anything that did not go live
	if render.IsFailed(result.FinalStatus) || result.FinalStatus == FinalStatusTimedOut {
		logsCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: time.Minute,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
		})
		var logs *activities.FetchLogsResult
		if err := workflow.ExecuteActivity(logsCtx, "FetchRenderLogs", activities.FetchLogsInput{
			TailLines: input.LogTailLines,
		}).Get(ctx, &logs); err != nil {
			// a log fetch failure never fails the deploy workflow
			logger.Warn("Failed to fetch Render logs", "error", err)
		} else {
			result.LogTail = logs.Entries
		}
	}

	// 5. Mirror the outcome
	if mirror.active() {
		state := GitHubState(result.FinalStatus)
		if mirror.update(state, finalDescription(result.FinalStatus, trigger.DeployID)) {
			result.StatusUpdates++
		}
	}

	endTime := workflow.Now(ctx)
	result.CompletedAt = endTime
	result.TotalDuration = endTime.Sub(startTime).String()

	logger.Info("Render deployment workflow completed",
		"deploy_id", result.DeployID,
		"final_status", result.FinalStatus,
		"duration", result.TotalDuration,
		"status_checks", result.StatusChecks,
		"status_updates", result.StatusUpdates)

	return result, nil
}

// GitHubState maps a Render deploy status to a GitHub deployment state.
func GitHubState(status string) string {
	switch {
	case status == render.StatusLive:
		return "success"
	case render.IsFailed(status):
		return "failure"
	case status == render.StatusDeactivated:
		return "inactive"
	case status == render.StatusCanceled, status == FinalStatusTimedOut:
		return "error"
	case status == render.StatusCreated:
		return "queued"
	default:
		return "in_progress"
	}
}

func finalDescription(status, deployID string) string {
	switch {
	case status == render.StatusLive:
		return fmt.Sprintf("Render deploy %s is live", deployID)
	case status == FinalStatusTimedOut:
		return fmt.Sprintf("Render deploy %s did not finish in time", deployID)
	default:
		return fmt.Sprintf("Render deploy %s ended with status %s", deployID, status)
	}
}

func applyDefaults(input *DeploymentWorkflowInput) {
	if input.PollInterval <= 0 {
		input.PollInterval = DefaultPollInterval
	}
	if input.MaxWait <= 0 {
		input.MaxWait = DefaultMaxWait
	}
	if input.LogTailLines <= 0 {
		input.LogTailLines = DefaultLogTailLines
	}
	if input.Environment == "" {
		input.Environment = "production"
	}
}
