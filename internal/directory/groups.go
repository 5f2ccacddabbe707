package directory

import (
	"context"
	"fmt"
	"net/url"

	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

// ResolveGroups fetches the group memberships of the given user, following
// pagination and discarding directory objects that are not groups. Callers
// degrade a returned error to an empty set; the matcher denies on empty
// sets anyway, and the error stays visible in logs.
func (c *Client) ResolveGroups(ctx context.Context, bearerToken, username string) ([]core.DirectoryGroup, error) {
	next := c.baseURL + "/users/" + url.PathEscape(username) + "/memberOf"

	var groups []core.DirectoryGroup
	for next != "" {
		var page memberOfPage
		if err := c.get(ctx, bearerToken, next, &page); err != nil {
			return nil, fmt.Errorf("fetching group memberships: %w", err)
		}
		for _, obj := range page.Value {
			if !obj.isGroup() {
				continue
			}
			groups = append(groups, core.DirectoryGroup{
				ID:          obj.ID,
				Name:        obj.DisplayName,
				Description: obj.Description,
			})
		}
		next = page.NextLink
	}

	return groups, nil
}
