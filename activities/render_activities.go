package activities

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/imranansari/render-deploy-wf/logging"
	"github.com/imranansari/render-deploy-wf/render"
)

// RenderActivities wraps the Render deploy API for workflows
type RenderActivities struct {
	svc render.DeployService
}

// NewRenderActivities creates a new instance of Render activities
func NewRenderActivities(svc render.DeployService) *RenderActivities {
	return &RenderActivities{svc: svc}
}

// TriggerRenderDeploy starts a deploy of the configured Render service.
// Workflows must schedule it with a single attempt.
func (a *RenderActivities) TriggerRenderDeploy(ctx context.Context) (*TriggerDeployResult, error) {
	activityInfo := activity.GetInfo(ctx)
	logger := logging.ActivityLogger("TriggerRenderDeploy", activityInfo.WorkflowExecution.ID, activityInfo.WorkflowExecution.RunID)

	logger.Info().
		Str("render_service_id", a.svc.ServiceID()).
		Int32("attempt", activityInfo.Attempt).
		Msg("Triggering Render deploy")

	deploy, err := a.svc.TriggerDeploy(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to trigger Render deploy")
		return nil, renderError("trigger deploy", err)
	}

	result := &TriggerDeployResult{
		ServiceID:    a.svc.ServiceID(),
		DeployID:     deploy.ID,
		Status:       deploy.Status,
		DashboardURL: render.DashboardURL(a.svc.ServiceID(), deploy.ID),
		CreatedAt:    deploy.CreatedAt,
	}
	if deploy.Commit != nil {
		result.CommitSHA = deploy.Commit.ID
	}

	logger.Info().
		Str("deploy_id", result.DeployID).
		Str("status", result.Status).
		Msg("Render deploy triggered")

	return result, nil
}

// GetRenderDeployStatus reads the status of a deploy
func (a *RenderActivities) GetRenderDeployStatus(ctx context.Context, input GetDeployStatusInput) (*DeployStatusResult, error) {
	activityInfo := activity.GetInfo(ctx)
	logger := logging.ActivityLogger("GetRenderDeployStatus", activityInfo.WorkflowExecution.ID, activityInfo.WorkflowExecution.RunID)

	status, err := a.svc.GetDeployStatus(ctx, input.DeployID)
	if err != nil {
		logger.Error().Err(err).Str("deploy_id", input.DeployID).Msg("Failed to get Render deploy status")
		return nil, renderError("get deploy status", err)
	}

	logger.Debug().
		Str("deploy_id", input.DeployID).
		Str("status", status.Status).
		Msg("Render deploy status")

	return &DeployStatusResult{
		Status:     status.Status,
		FinishedAt: status.FinishedAt,
		Terminal:   render.IsTerminal(status.Status),
		Failed:     render.IsFailed(status.Status),
	}, nil
}

// FetchRenderLogs returns the last TailLines entries of the service logs.
// A response the client cannot read as a log list gives an empty result.
func (a *RenderActivities) FetchRenderLogs(ctx context.Context, input FetchLogsInput) (*FetchLogsResult, error) {
	activityInfo := activity.GetInfo(ctx)
	logger := logging.ActivityLogger("FetchRenderLogs", activityInfo.WorkflowExecution.ID, activityInfo.WorkflowExecution.RunID)

	seq, err := a.svc.ListLogs(ctx)
	if errors.Is(err, render.ErrUnrecognizedResponse) {
		logger.Warn().Msg("Render logs response not recognized")
		return &FetchLogsResult{Entries: []render.LogEntry{}, Unrecognized: true}, nil
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch Render logs")
		return nil, renderError("list logs", err)
	}

	entries := slices.Collect(seq)
	total := len(entries)
	if input.TailLines > 0 && total > input.TailLines {
		entries = entries[total-input.TailLines:]
	}
	if entries == nil {
		entries = []render.LogEntry{}
	}

	logger.Info().
		Int("total", total).
		Int("returned", len(entries)).
		Msg("Fetched Render logs")

	return &FetchLogsResult{Entries: entries, Total: total}, nil
}

// renderError marks failures that a retry cannot fix as non-retryable.
func renderError(op string, err error) error {
	if !render.IsPermanent(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return temporal.NewNonRetryableApplicationError(fmt.Sprintf("%s: %v", op, err), renderErrorType(err), err)
}

func renderErrorType(err error) string {
	var (
		authErr   *render.AuthenticationError
		decErr    *render.DecodingError
		remoteErr *render.RemoteError
	)
	switch {
	case errors.Is(err, render.ErrConfiguration):
		return "ConfigurationError"
	case errors.Is(err, render.ErrInvalidArgument):
		return "InvalidArgument"
	case errors.As(err, &authErr):
		return "AuthenticationError"
	case errors.As(err, &decErr):
		return "DecodingError"
	case errors.As(err, &remoteErr):
		return "RemoteError"
	}
	return "RenderError"
}
