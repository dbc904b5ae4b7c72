// Command render triggers Render deploys, checks their status and prints
// service logs.
package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/imranansari/render-deploy-wf/config"
	"github.com/imranansari/render-deploy-wf/logging"
	"github.com/imranansari/render-deploy-wf/render"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what the subcommands need; tests swap the constructors.
type app struct {
	loadConfig  func() (*config.Config, error)
	newService  func(cfg *config.Config) (render.DeployService, error)
	runWorkflow workflowRunner

	cfg *config.Config
}

func newApp() *app {
	return &app{
		loadConfig:  config.Load,
		newService:  newRenderClient,
		runWorkflow: runOnTemporal,
	}
}

func newRenderClient(cfg *config.Config) (render.DeployService, error) {
	return render.NewClient(
		cfg.Render.APIKey,
		cfg.Render.ServiceID,
		render.WithBaseURL(cfg.Render.BaseURL),
		render.WithHTTPClient(&http.Client{Timeout: cfg.Render.HTTPTimeout}),
		render.WithLogger(logging.RenderLogger(cfg.Render.ServiceID)),
	)
}

func (a *app) service() (render.DeployService, error) {
	return a.newService(a.cfg)
}

func newRootCmd(a *app) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Trigger and inspect Render deploys",
		Long: `render talks to the Render API for the service named by RENDER_SERVICE_ID,
authenticating with RENDER_API_KEY. Settings are read from the environment
or a .env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				printError(cmd, "loading configuration", err)
				return err
			}
			a.cfg = cfg
			logging.InitLogger(cfg.App.LogLevel, cfg.App.LogFormat)
			initColors(noColor)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newDeployCmd(a),
		newStatusCmd(a),
		newLogsCmd(a),
		newRunCmd(a),
	)
	return cmd
}
