package kinde

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/kinde-purge/internal/core/domain"
)

// organizationUsersResponse is the wire shape of
// GET /api/v1/organizations/{org_code}/users.
type organizationUsersResponse struct {
	Code              string                    `json:"code"`
	OrganizationUsers []domain.OrganizationUser `json:"organization_users"`
	NextToken         string                    `json:"next_token"`
}

// ListOrganizationUsers enumerates every user belonging to the given
// organisation via opaque next-token pagination.
//
// Unlike ListUsers, an empty page halts pagination on its own, before
// the next token is even inspected: the API has been seen returning a
// token alongside an empty final page, and following it would loop.
func (c *Client) ListOrganizationUsers(ctx context.Context, orgCode string) ([]domain.OrganizationUser, error) {
	var users []domain.OrganizationUser
	nextToken := ""
	path := "/api/v1/organizations/" + url.PathEscape(orgCode) + "/users"

	for page := 1; ; page++ {
		query := url.Values{"page_size": {strconv.Itoa(c.pageSize)}}
		if nextToken != "" {
			query.Set("next_token", nextToken)
		}

		status, body, err := c.do(ctx, http.MethodGet, path, query)
		if err != nil {
			return nil, err
		}
		if !isSuccess(status) {
			return nil, fmt.Errorf("%w: list organisation users: %w", ErrPageFetch, newAPIError(status, body))
		}

		var pr organizationUsersResponse
		if err := json.Unmarshal(body, &pr); err != nil {
			return nil, fmt.Errorf("%w: decode organisation users page: %v", ErrPageFetch, err)
		}

		if len(pr.OrganizationUsers) == 0 {
			return users, nil
		}

		users = append(users, pr.OrganizationUsers...)
		c.logger.Debug("organisation users page fetched",
			slog.String("org_code", orgCode),
			slog.Int("page", page),
			slog.Int("items", len(pr.OrganizationUsers)),
			slog.Int("total", len(users)),
		)

		if pr.NextToken == "" || pr.NextToken == nextToken {
			return users, nil
		}
		nextToken = pr.NextToken
	}
}
