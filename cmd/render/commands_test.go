package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imranansari/render-deploy-wf/config"
	"github.com/imranansari/render-deploy-wf/render"
	"github.com/imranansari/render-deploy-wf/render/rendertest"
	"github.com/imranansari/render-deploy-wf/workflows"
)

func testConfig() *config.Config {
	return &config.Config{
		Render: config.RenderConfig{
			APIKey:       "rnd_test",
			ServiceID:    "srv-test",
			BaseURL:      "https://api.render.com",
			PollInterval: 15 * time.Second,
			MaxWait:      30 * time.Minute,
			LogTail:      50,
		},
		Temporal: config.TemporalConfig{TaskQueue: "render-deployment-tracker"},
		App:      config.AppConfig{LogLevel: "error", LogFormat: "json"},
	}
}

func testApp(cfg *config.Config, fake *rendertest.Fake) *app {
	return &app{
		loadConfig: func() (*config.Config, error) { return cfg, nil },
		newService: func(*config.Config) (render.DeployService, error) { return fake, nil },
		runWorkflow: func(context.Context, *config.Config, workflows.DeploymentWorkflowInput) (*workflows.DeploymentWorkflowResult, error) {
			return nil, errors.New("no workflow runner")
		},
	}
}

func execute(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDeployCommand(t *testing.T) {
	fake := &rendertest.Fake{
		Deploy: &render.Deploy{
			ID:     "dep-abc123",
			Status: render.StatusCreated,
			Commit: &render.Commit{ID: "a1b2c3d"},
		},
	}

	stdout, _, err := execute(t, testApp(testConfig(), fake), "deploy")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.TriggerCalls())
	assert.Contains(t, stdout, "Deployment triggered successfully!")
	assert.Contains(t, stdout, "Deploy ID: dep-abc123")
	assert.Contains(t, stdout, "Status: created")
	assert.Contains(t, stdout, "Commit: a1b2c3d")
}

func TestDeployCommandAuthFailure(t *testing.T) {
	fake := &rendertest.Fake{
		TriggerErr: &render.AuthenticationError{StatusCode: 401, Body: `{"message":"unauthorized"}`},
	}

	_, stderr, err := execute(t, testApp(testConfig(), fake), "deploy")
	require.Error(t, err)

	var authErr *render.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
	assert.Contains(t, stderr, "Error triggering deploy")
	assert.Contains(t, stderr, "RENDER_API_KEY")
}

func TestDeployCommandShowsRawBody(t *testing.T) {
	fake := &rendertest.Fake{
		TriggerErr: &render.DecodingError{Op: "trigger deploy", Body: "<html>oops</html>", Err: errors.New("invalid character")},
	}

	_, stderr, err := execute(t, testApp(testConfig(), fake), "deploy")
	require.Error(t, err)
	assert.Contains(t, stderr, "Raw response: <html>oops</html>")
}

func TestStatusCommand(t *testing.T) {
	finished := time.Date(2024, 1, 15, 10, 35, 0, 0, time.UTC)
	fake := &rendertest.Fake{
		Statuses: []render.DeployStatus{{Status: render.StatusLive, FinishedAt: &finished}},
	}

	stdout, _, err := execute(t, testApp(testConfig(), fake), "status", "dep-abc123")
	require.NoError(t, err)

	assert.Equal(t, []string{"dep-abc123"}, fake.StatusIDs())
	assert.Contains(t, stdout, "Deployment Status: live")
	assert.Contains(t, stdout, "Finished at: "+formatTime(finished))
	assert.Contains(t, stdout, "https://dashboard.render.com/web/srv-test/deploys/dep-abc123")
}

func TestStatusCommandDeployIDFromEnvironment(t *testing.T) {
	t.Setenv("RENDER_DEPLOY_ID", "dep-from-env")
	fake := &rendertest.Fake{
		Statuses: []render.DeployStatus{{Status: render.StatusBuildInProgress}},
	}

	stdout, _, err := execute(t, testApp(testConfig(), fake), "status")
	require.NoError(t, err)

	assert.Equal(t, []string{"dep-from-env"}, fake.StatusIDs())
	assert.Contains(t, stdout, "Deployment Status: build_in_progress")
	assert.NotContains(t, stdout, "Finished at")
}

func TestStatusCommandMissingDeployID(t *testing.T) {
	t.Setenv("RENDER_DEPLOY_ID", "")
	fake := &rendertest.Fake{}

	_, stderr, err := execute(t, testApp(testConfig(), fake), "status")
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrInvalidArgument)
	assert.Contains(t, stderr, "Error checking deploy")
	assert.Zero(t, fake.StatusCalls())
}

func TestLogsCommand(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	fake := &rendertest.Fake{
		Logs: []render.LogEntry{
			{Timestamp: ts, Message: "Build started"},
			{Timestamp: ts.Add(time.Second), Message: "Build finished"},
		},
	}

	stdout, _, err := execute(t, testApp(testConfig(), fake), "logs")
	require.NoError(t, err)

	assert.Contains(t, stdout, "["+formatTime(ts)+"] Build started")
	assert.Contains(t, stdout, "Build finished")
	assert.Less(t, bytes.Index([]byte(stdout), []byte("Build started")), bytes.Index([]byte(stdout), []byte("Build finished")))
}

func TestLogsCommandEmpty(t *testing.T) {
	stdout, _, err := execute(t, testApp(testConfig(), &rendertest.Fake{}), "logs")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No log entries.")
}

func TestLogsCommandUnrecognizedResponse(t *testing.T) {
	fake := &rendertest.Fake{LogsErr: render.ErrUnrecognizedResponse}

	stdout, _, err := execute(t, testApp(testConfig(), fake), "logs")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Warning: the logs response was not a list of entries")

	_, _, err = execute(t, testApp(testConfig(), fake), "logs", "--strict")
	assert.ErrorIs(t, err, render.ErrUnrecognizedResponse)
}

func TestConfigErrorStopsCommand(t *testing.T) {
	fake := &rendertest.Fake{}
	a := testApp(nil, fake)
	a.loadConfig = func() (*config.Config, error) {
		return nil, errors.New("invalid configuration: RENDER_SERVICE_ID is required")
	}

	_, stderr, err := execute(t, a, "deploy")
	require.Error(t, err)
	assert.Contains(t, stderr, "RENDER_SERVICE_ID is required")
	assert.Zero(t, fake.TriggerCalls())
}

func TestRunCommand(t *testing.T) {
	finished := time.Date(2024, 1, 15, 10, 35, 0, 0, time.UTC)
	var got workflows.DeploymentWorkflowInput

	a := testApp(testConfig(), &rendertest.Fake{})
	a.runWorkflow = func(_ context.Context, _ *config.Config, input workflows.DeploymentWorkflowInput) (*workflows.DeploymentWorkflowResult, error) {
		got = input
		return &workflows.DeploymentWorkflowResult{
			DeployID:     "dep-abc123",
			FinalStatus:  render.StatusLive,
			FinishedAt:   &finished,
			DashboardURL: render.DashboardURL("srv-test", "dep-abc123"),
			StatusChecks: 3,
		}, nil
	}

	stdout, _, err := execute(t, a, "run", "--commit", "a1b2c3d", "--environment-url", "https://app.example.com")
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, got.PollInterval)
	assert.Equal(t, 30*time.Minute, got.MaxWait)
	assert.Equal(t, 50, got.LogTailLines)
	assert.Equal(t, "a1b2c3d", got.CommitSHA)
	assert.Equal(t, "https://app.example.com", got.EnvironmentURL)
	assert.Empty(t, got.GithubOwner)

	assert.Contains(t, stdout, "Deploy ID: dep-abc123")
	assert.Contains(t, stdout, "Final Status: live")
}

func TestRunCommandFailedDeploy(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	a := testApp(testConfig(), &rendertest.Fake{})
	a.runWorkflow = func(context.Context, *config.Config, workflows.DeploymentWorkflowInput) (*workflows.DeploymentWorkflowResult, error) {
		return &workflows.DeploymentWorkflowResult{
			DeployID:    "dep-abc123",
			FinalStatus: render.StatusBuildFailed,
			LogTail:     []render.LogEntry{{Timestamp: ts, Message: "npm ERR! missing script: build"}},
		}, nil
	}

	stdout, _, err := execute(t, a, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build_failed")
	assert.Contains(t, stdout, "npm ERR! missing script: build")
}

func TestWorkflowInputWithGitHub(t *testing.T) {
	cfg := testConfig()
	cfg.GitHub = config.GitHubConfig{
		AppID:       12345,
		Owner:       "acme",
		Repo:        "web",
		Environment: "pr-preview",
		RateLimit: config.RateLimitConfig{
			MaxRetries:        5,
			InitialBackoff:    time.Second,
			MaxBackoff:        time.Minute,
			BackoffMultiplier: 2,
		},
	}

	input := workflowInput(cfg)

	assert.Equal(t, "acme", input.GithubOwner)
	assert.Equal(t, "web", input.GithubRepo)
	assert.Equal(t, "pr-preview", input.Environment)
	assert.True(t, input.IsTransient)
	assert.Equal(t, int32(5), input.GitHubRetry.MaxAttempts)
	assert.Equal(t, time.Minute, input.GitHubRetry.MaximumInterval)
}
