package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/imranansari/render-deploy-wf/render"
)

func initColors(disabled bool) {
	if disabled {
		color.NoColor = true
	}
}

// statusColor picks a color for a Render deploy status
func statusColor(status string) *color.Color {
	switch {
	case status == render.StatusLive:
		return color.New(color.FgGreen)
	case render.IsFailed(status), status == render.StatusCanceled:
		return color.New(color.FgRed)
	case render.IsTerminal(status):
		return color.New(color.FgWhite)
	default:
		return color.New(color.FgYellow)
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format(time.DateTime)
}

func printf(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}

// printError reports err on stderr. Undecodable bodies are echoed raw.
func printError(cmd *cobra.Command, action string, err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", red("Error"), action, err)

	var decErr *render.DecodingError
	if errors.As(err, &decErr) && decErr.Body != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Raw response: %s\n", decErr.Body)
	}

	var authErr *render.AuthenticationError
	if errors.As(err, &authErr) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Check RENDER_API_KEY and that it can access RENDER_SERVICE_ID.")
	}
}
