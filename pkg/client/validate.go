package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/david-wiggs/jenkins-passthrough/internal/api"
)

// ValidateRequest is one credential validation request.
type ValidateRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Repository   string `json:"repository"`
	Organization string `json:"organization,omitempty"`
}

// ValidateResponse is the success response of a validation request.
type ValidateResponse struct {
	Success       bool     `json:"success"`
	Token         string   `json:"token"`
	Scopes        []string `json:"scopes"`
	Permissions   string   `json:"permissions"`
	UserGroups    []string `json:"userGroups,omitempty"`
	MatchingTeams []string `json:"matchingTeams,omitempty"`
	ExpiresAt     string   `json:"expiresAt,omitempty"`
}

// DeniedError is returned when the server rejects the credentials. It carries
// the diagnostics the server chose to expose.
type DeniedError struct {
	StatusCode    int
	Message       string
	UserGroups    []string
	MatchingTeams []string
	CorrelationID string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("validation denied: '%s' (correlation: %s)", e.Message, e.CorrelationID)
}

// Expiry parses the expiry timestamp of the issued token. The zero time is
// returned for passthrough tokens, whose expiry is unknown.
func (r *ValidateResponse) Expiry() (time.Time, error) {
	if r.ExpiresAt == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, r.ExpiresAt)
}

// Validate sends credentials to the server and returns the issued token with
// its decision diagnostics.
func (c *Client) Validate(ctx context.Context, request ValidateRequest) (*ValidateResponse, string, error) {
	marshalled, err := json.Marshal(request)
	if err != nil {
		return nil, "", fmt.Errorf("marshalling payload: %w", err)
	}

	// done manually instead of via c.post so denial bodies can be decoded
	// into DeniedError with their diagnostics
	req, err := http.NewRequestWithContext(ctx, "POST",
		c.endpoint(api.ValidateCredentialsRoute), bytes.NewReader(marshalled))
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, correlationFromResponse(resp), fmt.Errorf("connection failed: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	correlation := correlationFromResponse(resp)

	if resp.StatusCode >= 400 {
		var denied struct {
			Error         string   `json:"error"`
			UserGroups    []string `json:"userGroups"`
			MatchingTeams []string `json:"matchingTeams"`
		}
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, correlation, fmt.Errorf("request failed with status %d and unreadable body: %w",
				resp.StatusCode, readErr)
		}
		if json.Unmarshal(body, &denied) != nil || denied.Error == "" {
			return nil, correlation, fmt.Errorf("api error: *unparsed '%s' (status %d)",
				string(body), resp.StatusCode)
		}
		return nil, correlation, &DeniedError{
			StatusCode:    resp.StatusCode,
			Message:       denied.Error,
			UserGroups:    denied.UserGroups,
			MatchingTeams: denied.MatchingTeams,
			CorrelationID: correlation,
		}
	}

	var result ValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, correlation, fmt.Errorf("decoding response: %w", err)
	}
	return &result, correlation, nil
}
