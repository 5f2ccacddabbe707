package client

import (
	"context"
	"net/http"

	"github.com/david-wiggs/jenkins-passthrough/internal/api"
	"github.com/david-wiggs/jenkins-passthrough/internal/buildinfo"
)

func (c *Client) Info(
	ctx context.Context,
) (*buildinfo.Info, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint(api.AboutRoute), nil)
	if err != nil {
		return nil, "", err
	}
	var info buildinfo.Info
	correlation, err := c.do(req, &info)
	return &info, correlation, err
}
