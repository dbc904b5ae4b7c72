// Package githubtest provides an in-memory github.Tracker for tests.
package githubtest

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/go-github/v58/github"
)

// Fake records deployments and statuses instead of calling GitHub.
type Fake struct {
	CreateErr error
	StatusErr error

	mu          sync.Mutex
	nextID      int64
	deployments []*github.DeploymentRequest
	statuses    []*github.DeploymentStatusRequest
}

func (f *Fake) CreateDeployment(ctx context.Context, owner, repo string, req *github.DeploymentRequest) (*github.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.nextID++
	f.deployments = append(f.deployments, req)
	return &github.Deployment{
		ID:          github.Int64(f.nextID),
		URL:         github.String("https://api.github.com/repos/" + owner + "/" + repo + "/deployments"),
		Environment: req.Environment,
	}, nil
}

func (f *Fake) CreateDeploymentStatus(ctx context.Context, owner, repo string, deploymentID int64, req *github.DeploymentStatusRequest) (*github.DeploymentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	if deploymentID == 0 {
		return nil, errors.New("unknown deployment")
	}
	f.statuses = append(f.statuses, req)
	return &github.DeploymentStatus{State: req.State}, nil
}

// Deployments returns the deployment requests received so far.
func (f *Fake) Deployments() []*github.DeploymentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.deployments)
}

// Statuses returns the status requests received so far.
func (f *Fake) Statuses() []*github.DeploymentStatusRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.statuses)
}

// States returns the states of the status requests received so far.
func (f *Fake) States() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	states := make([]string, 0, len(f.statuses))
	for _, s := range f.statuses {
		states = append(states, s.GetState())
	}
	return states
}
