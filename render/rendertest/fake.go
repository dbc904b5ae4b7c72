// Package rendertest provides an in-memory render.DeployService for tests.
package rendertest

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/imranansari/render-deploy-wf/render"
)

// Fake is a scripted render.DeployService. Statuses are returned in order;
// the last one repeats once the script runs out.
type Fake struct {
	Service string

	Deploy     *render.Deploy
	TriggerErr error

	Statuses  []render.DeployStatus
	StatusErr error

	Logs    []render.LogEntry
	LogsErr error

	mu           sync.Mutex
	triggerCalls int
	statusCalls  int
	logCalls     int
	statusIDs    []string
}

var _ render.DeployService = (*Fake)(nil)

func (f *Fake) ServiceID() string {
	if f.Service == "" {
		return "srv-test"
	}
	return f.Service
}

func (f *Fake) TriggerDeploy(ctx context.Context) (*render.Deploy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggerCalls++
	if f.TriggerErr != nil {
		return nil, f.TriggerErr
	}
	d := *f.Deploy
	return &d, nil
}

func (f *Fake) GetDeployStatus(ctx context.Context, deployID string) (*render.DeployStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if deployID == "" {
		return nil, render.ErrInvalidArgument
	}
	f.statusCalls++
	f.statusIDs = append(f.statusIDs, deployID)
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	if len(f.Statuses) == 0 {
		return &render.DeployStatus{Status: render.StatusCreated}, nil
	}
	i := min(f.statusCalls, len(f.Statuses)) - 1
	s := f.Statuses[i]
	return &s, nil
}

func (f *Fake) ListLogs(ctx context.Context) (iter.Seq[render.LogEntry], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logCalls++
	if f.LogsErr != nil {
		if f.LogsErr == render.ErrUnrecognizedResponse {
			return slices.Values([]render.LogEntry{}), f.LogsErr
		}
		return nil, f.LogsErr
	}
	return slices.Values(slices.Clone(f.Logs)), nil
}

// TriggerCalls returns how many times TriggerDeploy was called.
func (f *Fake) TriggerCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.triggerCalls
}

// StatusCalls returns how many status checks were made.
func (f *Fake) StatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// LogCalls returns how many times ListLogs was called.
func (f *Fake) LogCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logCalls
}

// StatusIDs returns the deploy IDs passed to GetDeployStatus.
func (f *Fake) StatusIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.statusIDs)
}
