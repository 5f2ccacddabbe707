package client

import (
	"context"
	"fmt"

	"github.com/david-wiggs/jenkins-passthrough/internal/api"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

type auditListResponse struct {
	Count   int               `json:"count"`
	Entries []core.AuditEntry `json:"entries"`
}

type tokenListResponse struct {
	Count  int                  `json:"count"`
	Tokens []core.TokenMetadata `json:"tokens"`
}

// ListAudits retrieves the latest audit entries from the server, limited to
// the specified number. Requires an admin auth token.
func (c *Client) ListAudits(ctx context.Context, limit uint) ([]core.AuditEntry, error) {
	var resp auditListResponse
	url := c.endpoint(api.ListAuditsRoute)
	if limit > 0 {
		url = fmt.Sprintf("%s?limit=%d", url, limit)
	}
	if _, err := c.get(ctx, url, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// ListActiveTokens retrieves metadata of currently active tokens from the
// server. Requires an admin auth token.
func (c *Client) ListActiveTokens(ctx context.Context) ([]core.TokenMetadata, error) {
	var resp tokenListResponse
	if _, err := c.get(ctx, c.endpoint(api.ListActiveTokensRoute), &resp); err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}
