// Package driven defines the outbound ports the core services depend on.
package driven

import (
	"context"

	"github.com/custodia-labs/kinde-purge/internal/core/domain"
)

// Directory is the administrative surface of the identity provider the
// purge flows enumerate and mutate. Implemented by the kinde client.
type Directory interface {
	// ListUsers enumerates every user in the business.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// ListOrganizationUsers enumerates every user in one organisation.
	ListOrganizationUsers(ctx context.Context, orgCode string) ([]domain.OrganizationUser, error)

	// ListIdentities enumerates a single user's sign-in identities.
	ListIdentities(ctx context.Context, userID string) ([]domain.Identity, error)

	// DeleteUser removes one user by id.
	DeleteUser(ctx context.Context, id string) error

	// DeleteIdentity removes one identity by id.
	DeleteIdentity(ctx context.Context, id string) error
}
