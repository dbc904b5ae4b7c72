package activities

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/imranansari/render-deploy-wf/render"
	"github.com/imranansari/render-deploy-wf/render/rendertest"
)

func newActivityEnv(t *testing.T, acts ...interface{}) *testsuite.TestActivityEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	for _, a := range acts {
		env.RegisterActivity(a)
	}
	return env
}

func TestTriggerRenderDeploy(t *testing.T) {
	fake := &rendertest.Fake{
		Service: "srv-1",
		Deploy: &render.Deploy{
			ID:     "dep-1",
			Status: render.StatusCreated,
			Commit: &render.Commit{ID: "abc123"},
		},
	}
	acts := NewRenderActivities(fake)
	env := newActivityEnv(t, acts)

	val, err := env.ExecuteActivity(acts.TriggerRenderDeploy)
	require.NoError(t, err)

	var result TriggerDeployResult
	require.NoError(t, val.Get(&result))
	assert.Equal(t, "dep-1", result.DeployID)
	assert.Equal(t, render.StatusCreated, result.Status)
	assert.Equal(t, "abc123", result.CommitSHA)
	assert.Equal(t, render.DashboardURL("srv-1", "dep-1"), result.DashboardURL)
	assert.Equal(t, 1, fake.TriggerCalls())
}

func TestTriggerRenderDeployAuthFailureIsNonRetryable(t *testing.T) {
	fake := &rendertest.Fake{TriggerErr: &render.AuthenticationError{StatusCode: http.StatusUnauthorized}}
	acts := NewRenderActivities(fake)
	env := newActivityEnv(t, acts)

	_, err := env.ExecuteActivity(acts.TriggerRenderDeploy)
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, "AuthenticationError", appErr.Type())
}

func TestTriggerRenderDeployTransportFailureIsRetryable(t *testing.T) {
	fake := &rendertest.Fake{TriggerErr: &render.TransportError{Op: "trigger deploy", Err: errors.New("connection refused")}}
	acts := NewRenderActivities(fake)
	env := newActivityEnv(t, acts)

	_, err := env.ExecuteActivity(acts.TriggerRenderDeploy)
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		assert.False(t, appErr.NonRetryable())
	}
}

func TestGetRenderDeployStatus(t *testing.T) {
	finished := time.UnixMilli(1700000000000).UTC()
	fake := &rendertest.Fake{
		Statuses: []render.DeployStatus{
			{Status: render.StatusBuildFailed, FinishedAt: &finished},
		},
	}
	acts := NewRenderActivities(fake)
	env := newActivityEnv(t, acts)

	val, err := env.ExecuteActivity(acts.GetRenderDeployStatus, GetDeployStatusInput{DeployID: "dep-1"})
	require.NoError(t, err)

	var result DeployStatusResult
	require.NoError(t, val.Get(&result))
	assert.Equal(t, render.StatusBuildFailed, result.Status)
	assert.True(t, result.Terminal)
	assert.True(t, result.Failed)
	require.NotNil(t, result.FinishedAt)
	assert.True(t, result.FinishedAt.Equal(finished))
	assert.Equal(t, []string{"dep-1"}, fake.StatusIDs())
}

func TestGetRenderDeployStatusEmptyID(t *testing.T) {
	acts := NewRenderActivities(&rendertest.Fake{})
	env := newActivityEnv(t, acts)

	_, err := env.ExecuteActivity(acts.GetRenderDeployStatus, GetDeployStatusInput{})
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, "InvalidArgument", appErr.Type())
}

func TestFetchRenderLogsTail(t *testing.T) {
	fake := &rendertest.Fake{
		Logs: []render.LogEntry{
			{Timestamp: time.UnixMilli(1).UTC(), Message: "one"},
			{Timestamp: time.UnixMilli(2).UTC(), Message: "two"},
			{Timestamp: time.UnixMilli(3).UTC(), Message: "three"},
		},
	}
	acts := NewRenderActivities(fake)
	env := newActivityEnv(t, acts)

	val, err := env.ExecuteActivity(acts.FetchRenderLogs, FetchLogsInput{TailLines: 2})
	require.NoError(t, err)

	var result FetchLogsResult
	require.NoError(t, val.Get(&result))
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "two", result.Entries[0].Message)
	assert.Equal(t, "three", result.Entries[1].Message)
	assert.False(t, result.Unrecognized)
}

func TestFetchRenderLogsUnrecognized(t *testing.T) {
	acts := NewRenderActivities(&rendertest.Fake{LogsErr: render.ErrUnrecognizedResponse})
	env := newActivityEnv(t, acts)

	val, err := env.ExecuteActivity(acts.FetchRenderLogs, FetchLogsInput{TailLines: 10})
	require.NoError(t, err)

	var result FetchLogsResult
	require.NoError(t, val.Get(&result))
	assert.True(t, result.Unrecognized)
	assert.Empty(t, result.Entries)
}

func TestRenderErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: render.ErrConfiguration, want: "ConfigurationError"},
		{err: render.ErrInvalidArgument, want: "InvalidArgument"},
		{err: &render.AuthenticationError{StatusCode: 403}, want: "AuthenticationError"},
		{err: &render.DecodingError{Err: errors.New("x")}, want: "DecodingError"},
		{err: &render.RemoteError{StatusCode: 404}, want: "RemoteError"},
		{err: errors.New("other"), want: "RenderError"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, renderErrorType(tt.err))
	}
}
