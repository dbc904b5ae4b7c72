package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v58/github"
	"github.com/rs/zerolog"

	"github.com/imranansari/render-deploy-wf/config"
)

// Tracker records deployments and their statuses on GitHub.
type Tracker interface {
	CreateDeployment(ctx context.Context, owner, repo string, req *github.DeploymentRequest) (*github.Deployment, error)
	CreateDeploymentStatus(ctx context.Context, owner, repo string, deploymentID int64, req *github.DeploymentStatusRequest) (*github.DeploymentStatus, error)
}

// ClientFactory creates authenticated GitHub clients
type ClientFactory struct {
	config     config.GitHubConfig
	privateKey []byte
	logger     zerolog.Logger
	// Cache for installation IDs by organization
	mu                sync.Mutex
	installationCache map[string]int64
}

var _ Tracker = (*ClientFactory)(nil)

// NewClientFactory creates a new GitHub client factory
func NewClientFactory(cfg config.GitHubConfig, logger zerolog.Logger) *ClientFactory {
	return &ClientFactory{
		config:            cfg,
		privateKey:        cfg.PrivateKey,
		logger:            logger,
		installationCache: make(map[string]int64),
	}
}

// CreateDeployment creates a deployment using the installation client for owner
func (f *ClientFactory) CreateDeployment(ctx context.Context, owner, repo string, req *github.DeploymentRequest) (*github.Deployment, error) {
	client, err := f.CreateClientForOrg(ctx, owner)
	if err != nil {
		return nil, err
	}
	deployment, _, err := client.Repositories.CreateDeployment(ctx, owner, repo, req)
	return deployment, err
}

// CreateDeploymentStatus adds a status to an existing deployment
func (f *ClientFactory) CreateDeploymentStatus(ctx context.Context, owner, repo string, deploymentID int64, req *github.DeploymentStatusRequest) (*github.DeploymentStatus, error) {
	client, err := f.CreateClientForOrg(ctx, owner)
	if err != nil {
		return nil, err
	}
	status, _, err := client.Repositories.CreateDeploymentStatus(ctx, owner, repo, deploymentID, req)
	return status, err
}

// CreateClientForOrg creates a GitHub client for the organization's app
// installation, on Enterprise when an enterprise URL is configured.
func (f *ClientFactory) CreateClientForOrg(ctx context.Context, org string) (*github.Client, error) {
	installationID, err := f.installationFor(ctx, org)
	if err != nil {
		return nil, err
	}
	return f.createInstallationClient(installationID)
}

func (f *ClientFactory) installationFor(ctx context.Context, org string) (int64, error) {
	f.mu.Lock()
	installationID, exists := f.installationCache[org]
	f.mu.Unlock()
	if exists {
		return installationID, nil
	}

	// Create GitHub App transport to find installations
	atr, err := ghinstallation.NewAppsTransport(
		http.DefaultTransport,
		f.config.AppID,
		f.privateKey,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create app transport: %w", err)
	}

	var appClient *github.Client
	if baseURL := f.enterpriseBaseURL(); baseURL != "" {
		atr.BaseURL = baseURL + "/api/v3"
		appClient, err = github.NewClient(&http.Client{Transport: atr}).
			WithEnterpriseURLs(baseURL+"/api/v3/", baseURL+"/api/uploads/")
		if err != nil {
			return 0, fmt.Errorf("failed to configure enterprise urls: %w", err)
		}
	} else {
		appClient = github.NewClient(&http.Client{Transport: atr})
	}

	installations, _, err := appClient.Apps.ListInstallations(ctx, &github.ListOptions{PerPage: 100})
	if err != nil {
		return 0, fmt.Errorf("failed to list app installations: %w", err)
	}

	for _, installation := range installations {
		if installation.GetAccount().GetLogin() == org {
			installationID = installation.GetID()
			break
		}
	}
	if installationID == 0 {
		return 0, fmt.Errorf("no installation found for organization '%s'", org)
	}

	f.mu.Lock()
	f.installationCache[org] = installationID
	f.mu.Unlock()

	f.logger.Info().
		Int64("app_id", f.config.AppID).
		Int64("installation_id", installationID).
		Str("organization", org).
		Bool("enterprise", f.enterpriseBaseURL() != "").
		Msg("Found GitHub App installation for organization")

	return installationID, nil
}

// createInstallationClient creates a client for a specific installation ID
func (f *ClientFactory) createInstallationClient(installationID int64) (*github.Client, error) {
	itr, err := ghinstallation.New(
		http.DefaultTransport,
		f.config.AppID,
		installationID,
		f.privateKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport: %w", err)
	}

	baseURL := f.enterpriseBaseURL()
	if baseURL == "" {
		return github.NewClient(&http.Client{Transport: itr}), nil
	}

	itr.BaseURL = baseURL + "/api/v3"
	client, err := github.NewClient(&http.Client{Transport: itr}).
		WithEnterpriseURLs(baseURL+"/api/v3/", baseURL+"/api/uploads/")
	if err != nil {
		return nil, fmt.Errorf("failed to configure enterprise urls: %w", err)
	}
	return client, nil
}

func (f *ClientFactory) enterpriseBaseURL() string {
	return strings.TrimSuffix(f.config.EnterpriseURL, "/")
}
