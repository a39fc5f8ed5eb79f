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

// usersResponse is the wire shape of GET /api/v1/users.
type usersResponse struct {
	Code      string        `json:"code"`
	Users     []domain.User `json:"users"`
	NextToken string        `json:"next_token"`
}

// ListUsers enumerates every user in the business via opaque next-token
// pagination. Pagination stops on an empty page, a missing next token,
// or a token identical to the one just used (stall guard).
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	nextToken := ""

	for page := 1; ; page++ {
		query := url.Values{"page_size": {strconv.Itoa(c.pageSize)}}
		if nextToken != "" {
			query.Set("next_token", nextToken)
		}

		status, body, err := c.do(ctx, http.MethodGet, "/api/v1/users", query)
		if err != nil {
			return nil, err
		}
		if !isSuccess(status) {
			return nil, fmt.Errorf("%w: list users: %w", ErrPageFetch, newAPIError(status, body))
		}

		var pr usersResponse
		if err := json.Unmarshal(body, &pr); err != nil {
			return nil, fmt.Errorf("%w: decode users page: %v", ErrPageFetch, err)
		}

		users = append(users, pr.Users...)
		c.logger.Debug("users page fetched",
			slog.Int("page", page),
			slog.Int("items", len(pr.Users)),
			slog.Int("total", len(users)),
		)

		if len(pr.Users) == 0 || pr.NextToken == "" || pr.NextToken == nextToken {
			return users, nil
		}
		nextToken = pr.NextToken
	}
}

// DeleteUser removes a single user by id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	query := url.Values{"id": {id}}
	status, body, err := c.do(ctx, http.MethodDelete, "/api/v1/user", query)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return fmt.Errorf("delete user %s: %w", id, newAPIError(status, body))
	}
	return nil
}
