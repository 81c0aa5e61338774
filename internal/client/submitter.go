// Package client is the worker agent's side of the update channel: the
// request/response snapshot submission path and the long-lived push listener.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"worktrack-backend/internal/models"
)

// Submitter posts snapshots to the server's saveWorkingTime endpoint. The
// server's acknowledgement confirms receipt only, not that observers have
// been notified.
type Submitter struct {
	baseURL string
	http    *http.Client
}

func NewSubmitter(baseURL string) *Submitter {
	return &Submitter{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type snapshotRequest struct {
	Username    string           `json:"username"`
	WorkingTime *int64           `json:"workingTime"`
	Location    *models.Location `json:"location"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// SubmitSnapshot sends a partial {workingTime, location} update for the
// given worker. At-most-once: there is no retry or buffering here, callers
// log and move on.
func (s *Submitter) SubmitSnapshot(ctx context.Context, username string, workingTime *int64, loc *models.Location) error {
	body, err := json.Marshal(snapshotRequest{
		Username:    username,
		WorkingTime: workingTime,
		Location:    loc,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/saveWorkingTime", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build snapshot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg messageResponse
		json.NewDecoder(resp.Body).Decode(&msg)
		return fmt.Errorf("submit snapshot: server returned %d (%s)", resp.StatusCode, msg.Message)
	}

	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the server's answer to a successful login.
type LoginResult struct {
	Message string               `json:"message"`
	User    *models.UserResponse `json:"user"`
	Token   string               `json:"token"`
}

// Login verifies credentials against the server and returns the issued
// token and user details.
func Login(ctx context.Context, baseURL, username, password string) (*LoginResult, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("marshal login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login: %s", result.Message)
	}

	return &result, nil
}
