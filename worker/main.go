package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/imranansari/render-deploy-wf/activities"
	"github.com/imranansari/render-deploy-wf/config"
	githubClient "github.com/imranansari/render-deploy-wf/github"
	"github.com/imranansari/render-deploy-wf/logging"
	"github.com/imranansari/render-deploy-wf/render"
	"github.com/imranansari/render-deploy-wf/workflows"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logging.InitLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	logger := logging.RenderLogger(cfg.Render.ServiceID).With().Str("component", "worker").Logger()

	logger.Info().
		Str("environment", cfg.App.Environment).
		Str("temporal_host", cfg.Temporal.HostPort).
		Str("task_queue", cfg.Temporal.TaskQueue).
		Bool("github_mirroring", cfg.GitHub.Enabled()).
		Str("github_enterprise_url", cfg.GitHub.EnterpriseURL).
		Msg("Starting Render Deployment Tracker Worker")

	renderClient, err := render.NewClient(
		cfg.Render.APIKey,
		cfg.Render.ServiceID,
		render.WithBaseURL(cfg.Render.BaseURL),
		render.WithHTTPClient(&http.Client{Timeout: cfg.Render.HTTPTimeout}),
		render.WithLogger(logging.RenderLogger(cfg.Render.ServiceID)),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Render client")
	}

	// Create Temporal client
	temporalClient, err := createTemporalClient(cfg.Temporal)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Temporal client")
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     cfg.Temporal.WorkerOptions.MaxConcurrentActivityExecutionSize,
		MaxConcurrentWorkflowTaskExecutionSize: cfg.Temporal.WorkerOptions.MaxConcurrentWorkflowTaskExecutionSize,
		EnableLoggingInReplay:                  cfg.Temporal.WorkerOptions.EnableLoggingInReplay,
	})

	w.RegisterWorkflow(workflows.RenderDeploymentWorkflow)

	renderActivities := activities.NewRenderActivities(renderClient)
	w.RegisterActivity(renderActivities.TriggerRenderDeploy)
	w.RegisterActivity(renderActivities.GetRenderDeployStatus)
	w.RegisterActivity(renderActivities.FetchRenderLogs)

	if cfg.GitHub.Enabled() {
		if err := githubClient.VerifyAppKey(cfg.GitHub.AppID, cfg.GitHub.PrivateKey); err != nil {
			logger.Fatal().Err(err).Msg("GitHub App private key is not usable")
		}
		githubFactory := githubClient.NewClientFactory(cfg.GitHub, logging.GitHubLogger())
		githubActivities := activities.NewGitHubActivities(githubFactory)
		w.RegisterActivity(githubActivities.CreateGitHubDeployment)
		w.RegisterActivity(githubActivities.UpdateGitHubDeploymentStatus)
		logger.Info().Msg("GitHub App authentication configured - installation IDs will be resolved per organization")
	}

	logger.Info().Msg("Starting Temporal worker")

	// Handle graceful shutdown
	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Run(worker.InterruptCh())
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal().Err(err).Msg("Worker error")
		}
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received termination signal")
		w.Stop()
	}

	logger.Info().Msg("Worker stopped gracefully")
}

func createTemporalClient(cfg config.TemporalConfig) (client.Client, error) {
	options := client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
	}

	return client.Dial(options)
}
