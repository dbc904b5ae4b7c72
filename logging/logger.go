package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes zerolog with the specified configuration
func InitLogger(level string, format string) {
	initLogger(os.Stderr, level, format)
}

func initLogger(out io.Writer, level string, format string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if format == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		// JSON format (default)
		log.Logger = zerolog.New(out).With().
			Timestamp().
			Caller().
			Logger()
	}

	log.Logger = log.With().
		Str("service", "render-deploy-wf").
		Logger()
}

// WorkflowLogger creates a logger for Temporal workflows
func WorkflowLogger(workflowID string, runID string) zerolog.Logger {
	return log.With().
		Str("workflow_id", workflowID).
		Str("run_id", runID).
		Str("component", "workflow").
		Logger()
}

// ActivityLogger creates a logger for Temporal activities
func ActivityLogger(activityName string, workflowID string, runID string) zerolog.Logger {
	return log.With().
		Str("activity", activityName).
		Str("workflow_id", workflowID).
		Str("run_id", runID).
		Str("component", "activity").
		Logger()
}

// GitHubLogger creates a logger for GitHub API operations
func GitHubLogger() zerolog.Logger {
	return log.With().
		Str("component", "github").
		Logger()
}

// RenderLogger creates a logger for Render API calls on one service
func RenderLogger(serviceID string) zerolog.Logger {
	return log.With().
		Str("component", "render").
		Str("render_service_id", serviceID).
		Logger()
}
