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

// identitiesResponse is the wire shape of
// GET /api/v1/users/{user_id}/identities.
type identitiesResponse struct {
	Code       string            `json:"code"`
	Identities []domain.Identity `json:"identities"`
	HasMore    bool              `json:"has_more"`
}

// ListIdentities enumerates a user's identities with starting_after
// cursor pagination: the next cursor is the id of the last identity on
// the page just fetched. Pagination stops on an empty page, has_more
// being false, an underivable cursor, or a cursor that failed to
// advance (stall guard).
func (c *Client) ListIdentities(ctx context.Context, userID string) ([]domain.Identity, error) {
	var identities []domain.Identity
	cursor := ""
	path := "/api/v1/users/" + url.PathEscape(userID) + "/identities"

	for page := 1; ; page++ {
		query := url.Values{"page_size": {strconv.Itoa(c.pageSize)}}
		if cursor != "" {
			query.Set("starting_after", cursor)
		}

		status, body, err := c.do(ctx, http.MethodGet, path, query)
		if err != nil {
			return nil, err
		}
		if !isSuccess(status) {
			return nil, fmt.Errorf("%w: list identities for user %s: %w", ErrPageFetch, userID, newAPIError(status, body))
		}

		var pr identitiesResponse
		if err := json.Unmarshal(body, &pr); err != nil {
			return nil, fmt.Errorf("%w: decode identities page: %v", ErrPageFetch, err)
		}

		identities = append(identities, pr.Identities...)
		c.logger.Debug("identities page fetched",
			slog.String("user_id", userID),
			slog.Int("page", page),
			slog.Int("items", len(pr.Identities)),
			slog.Int("total", len(identities)),
		)

		if len(pr.Identities) == 0 || !pr.HasMore {
			return identities, nil
		}
		next := pr.Identities[len(pr.Identities)-1].ID
		if next == "" || next == cursor {
			return identities, nil
		}
		cursor = next
	}
}

// DeleteIdentity removes a single identity by id.
func (c *Client) DeleteIdentity(ctx context.Context, id string) error {
	status, body, err := c.do(ctx, http.MethodDelete, "/api/v1/identities/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return fmt.Errorf("delete identity %s: %w", id, newAPIError(status, body))
	}
	return nil
}
