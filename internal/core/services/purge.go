// Package services implements the destructive purge flows: enumerate a
// resource collection through the directory port, then bulk-delete the
// discovered resources with per-item fault tolerance.
package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/custodia-labs/kinde-purge/internal/core/domain"
	"github.com/custodia-labs/kinde-purge/internal/core/ports/driven"
)

// Options configures a Purger.
type Options struct {
	// Confirm must be true for any flow to execute. Its absence fails
	// fast before a single network call is made.
	Confirm bool
	// DryRun enumerates and counts without issuing deletes.
	DryRun bool
	// Logger receives progress events. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Purger drives the purge flows against a directory. Every run gets a
// run_id attached to all of its progress events.
type Purger struct {
	dir       driven.Directory
	logger    *slog.Logger
	confirmed bool
	dryRun    bool
}

// NewPurger creates a purger for the given directory.
func NewPurger(dir driven.Directory, opts Options) *Purger {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Purger{
		dir:       dir,
		logger:    logger.With(slog.String("run_id", uuid.NewString())),
		confirmed: opts.Confirm,
		dryRun:    opts.DryRun,
	}
}

// PurgeUsers enumerates every user in the business and deletes each one.
// Per-item failures are tolerated and counted; enumeration failures
// abort the run, since an incomplete listing cannot be reconciled.
func (p *Purger) PurgeUsers(ctx context.Context) (domain.BulkResult, error) {
	if !p.confirmed && !p.dryRun {
		return domain.BulkResult{}, domain.ErrConfirmationRequired
	}

	users, err := p.dir.ListUsers(ctx)
	if err != nil {
		return domain.BulkResult{}, err
	}
	p.logger.Info("users enumerated", slog.Int("count", len(users)))

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	var result domain.BulkResult
	if p.dryRun {
		result.Processed = len(uniqueIDs(ids))
		p.logger.Info("dry run: no deletions issued",
			slog.Int("would_delete", result.Processed))
		return result, nil
	}

	result = deleteAll(ctx, ids, p.dir.DeleteUser, p.logger)
	p.logger.Info("user purge complete",
		slog.Int("processed", result.Processed),
		slog.Int("deleted", result.Deleted),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

// PurgeOrganizationIdentities enumerates every user in the organisation
// and deletes each user's identities, one user at a time. Returns the
// totals accumulated so far even when an enumeration error aborts the
// run partway through.
func (p *Purger) PurgeOrganizationIdentities(ctx context.Context, orgCode string) (domain.RunTotals, error) {
	var totals domain.RunTotals

	if !p.confirmed && !p.dryRun {
		return totals, domain.ErrConfirmationRequired
	}
	if orgCode == "" {
		return totals, domain.ErrOrganisationRequired
	}

	users, err := p.dir.ListOrganizationUsers(ctx, orgCode)
	if err != nil {
		return totals, err
	}
	p.logger.Info("organisation users enumerated",
		slog.String("org_code", orgCode),
		slog.Int("count", len(users)),
	)

	for i, user := range users {
		p.logger.Info("processing user",
			slog.String("user_id", user.ID),
			slog.Int("position", i+1),
			slog.Int("total", len(users)),
		)

		identities, err := p.dir.ListIdentities(ctx, user.ID)
		if err != nil {
			return totals, err
		}

		ids := make([]string, 0, len(identities))
		for _, identity := range identities {
			ids = append(ids, identity.ID)
		}

		var result domain.BulkResult
		if p.dryRun {
			result.Processed = len(uniqueIDs(ids))
		} else {
			result = deleteAll(ctx, ids, p.dir.DeleteIdentity, p.logger)
		}
		totals.AddUser(result)
	}

	p.logger.Info("identity purge complete",
		slog.String("org_code", orgCode),
		slog.Bool("dry_run", p.dryRun),
		slog.Int("users_processed", totals.UsersProcessed),
		slog.Int("identities_processed", totals.IdentitiesProcessed),
		slog.Int("identities_deleted", totals.IdentitiesDeleted),
		slog.Int("identities_failed", totals.IdentitiesFailed),
	)
	return totals, nil
}
