// Package directory is the identity-provider directory client: principal
// lookup, profile ("who am I") lookup, and group-membership resolution over
// a bearer-token-authenticated Graph-style HTTPS API.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const groupObjectType = "#microsoft.graph.group"

// Client talks to the directory API. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Profile is the canonical identity of the token holder.
type Profile struct {
	ID                string `json:"id"`
	UserPrincipalName string `json:"userPrincipalName"`
	DisplayName       string `json:"displayName"`
}

// Me returns the profile of the principal the bearer token belongs to.
func (c *Client) Me(ctx context.Context, bearer string) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, bearer, c.baseURL+"/me", &profile); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return &profile, nil
}

// UserExists checks that the username is a directory principal.
func (c *Client) UserExists(ctx context.Context, bearer, username string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/users/"+url.PathEscape(username), nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}
}

// directoryObject is one entry of a memberOf listing. Objects that are not
// groups (administrative roles and the like) carry a different odata type.
type directoryObject struct {
	ODataType   string `json:"@odata.type"`
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

type memberOfPage struct {
	NextLink string            `json:"@odata.nextLink"`
	Value    []directoryObject `json:"value"`
}

func (o directoryObject) isGroup() bool {
	return o.ODataType == groupObjectType
}

func (c *Client) get(ctx context.Context, bearer, rawURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding directory response: %w", err)
	}
	return nil
}
