package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Deploy statuses reported by the Render API.
const (
	StatusCreated             = "created"
	StatusBuildInProgress     = "build_in_progress"
	StatusUpdateInProgress    = "update_in_progress"
	StatusPreDeployInProgress = "pre_deploy_in_progress"
	StatusLive                = "live"
	StatusDeactivated         = "deactivated"
	StatusBuildFailed         = "build_failed"
	StatusUpdateFailed        = "update_failed"
	StatusPreDeployFailed     = "pre_deploy_failed"
	StatusCanceled            = "canceled"
)

// IsTerminal reports whether a deploy in this status will not change again.
func IsTerminal(status string) bool {
	switch status {
	case StatusLive, StatusDeactivated, StatusCanceled:
		return true
	}
	return IsFailed(status)
}

// IsFailed reports whether the status is one of the failure states.
func IsFailed(status string) bool {
	switch status {
	case StatusBuildFailed, StatusUpdateFailed, StatusPreDeployFailed:
		return true
	}
	return false
}

// Commit is the commit a deploy was built from.
type Commit struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// Deploy is the record returned when a deploy is triggered.
type Deploy struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Trigger    string     `json:"trigger,omitempty"`
	Commit     *Commit    `json:"commit,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// DeployStatus is the result of a status query.
type DeployStatus struct {
	Status     string     `json:"status"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// LogEntry is a single line of service output.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// DashboardURL links to a deploy in the Render dashboard.
func DashboardURL(serviceID, deployID string) string {
	return fmt.Sprintf("https://dashboard.render.com/web/%s/deploys/%s", serviceID, deployID)
}

// timestamp accepts either epoch milliseconds or an RFC 3339 string.
type timestamp struct {
	t     time.Time
	valid bool
}

func (ts *timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ts = timestamp{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*ts = timestamp{}
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		*ts = timestamp{t: t, valid: true}
		return nil
	}
	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	*ts = timestamp{t: time.UnixMilli(int64(ms)), valid: true}
	return nil
}

func (ts timestamp) ptr() *time.Time {
	if !ts.valid {
		return nil
	}
	t := ts.t
	return &t
}

type deployPayload struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Trigger    string    `json:"trigger"`
	Commit     *Commit   `json:"commit"`
	CreatedAt  timestamp `json:"createdAt"`
	UpdatedAt  timestamp `json:"updatedAt"`
	FinishedAt timestamp `json:"finishedAt"`
}

func (p deployPayload) deploy() *Deploy {
	return &Deploy{
		ID:         p.ID,
		Status:     p.Status,
		Trigger:    p.Trigger,
		Commit:     p.Commit,
		CreatedAt:  p.CreatedAt.ptr(),
		UpdatedAt:  p.UpdatedAt.ptr(),
		FinishedAt: p.FinishedAt.ptr(),
	}
}

type logPayload struct {
	Timestamp timestamp `json:"timestamp"`
	Message   string    `json:"message"`
}
