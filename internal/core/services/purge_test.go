package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kinde-purge/internal/core/domain"
)

// mockDirectory implements driven.Directory for testing.
type mockDirectory struct {
	users      []domain.User
	orgUsers   map[string][]domain.OrganizationUser
	identities map[string][]domain.Identity

	listErr      error
	failDeletes  map[string]error
	calls        int
	deletedUsers []string
	deletedIDs   []string
}

func (m *mockDirectory) ListUsers(context.Context) ([]domain.User, error) {
	m.calls++
	return m.users, m.listErr
}

func (m *mockDirectory) ListOrganizationUsers(_ context.Context, orgCode string) ([]domain.OrganizationUser, error) {
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.orgUsers[orgCode], nil
}

func (m *mockDirectory) ListIdentities(_ context.Context, userID string) ([]domain.Identity, error) {
	m.calls++
	return m.identities[userID], nil
}

func (m *mockDirectory) DeleteUser(_ context.Context, id string) error {
	m.calls++
	if err := m.failDeletes[id]; err != nil {
		return err
	}
	m.deletedUsers = append(m.deletedUsers, id)
	return nil
}

func (m *mockDirectory) DeleteIdentity(_ context.Context, id string) error {
	m.calls++
	if err := m.failDeletes[id]; err != nil {
		return err
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func TestPurgeUsers_RequiresConfirmation(t *testing.T) {
	dir := &mockDirectory{users: []domain.User{{ID: "u1"}}}
	p := NewPurger(dir, Options{Confirm: false})

	_, err := p.PurgeUsers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
	assert.Zero(t, dir.calls, "the guard fires before any directory call")
}

func TestPurgeUsers_DeletesEveryUser(t *testing.T) {
	dir := &mockDirectory{users: []domain.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}}
	p := NewPurger(dir, Options{Confirm: true})

	result, err := p.PurgeUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.BulkResult{Processed: 3, Deleted: 3}, result)
	assert.Equal(t, []string{"u1", "u2", "u3"}, dir.deletedUsers)
}

func TestPurgeUsers_EnumerationFailureAborts(t *testing.T) {
	dir := &mockDirectory{listErr: errors.New("page fetch failed")}
	p := NewPurger(dir, Options{Confirm: true})

	_, err := p.PurgeUsers(context.Background())
	require.Error(t, err)
	assert.Empty(t, dir.deletedUsers)
}

func TestPurgeUsers_DryRunIssuesNoDeletes(t *testing.T) {
	dir := &mockDirectory{users: []domain.User{{ID: "u1"}, {ID: "u2"}, {ID: "u1"}}}
	p := NewPurger(dir, Options{Confirm: true, DryRun: true})

	result, err := p.PurgeUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed, "dry run counts unique ids")
	assert.Zero(t, result.Deleted)
	assert.Empty(t, dir.deletedUsers)
}

func TestPurgeUsers_DryRunSkipsConfirmationGuard(t *testing.T) {
	dir := &mockDirectory{users: []domain.User{{ID: "u1"}}}
	p := NewPurger(dir, Options{Confirm: false, DryRun: true})

	result, err := p.PurgeUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, dir.deletedUsers)
}

func TestPurgeOrganizationIdentities_RequiresConfirmation(t *testing.T) {
	dir := &mockDirectory{}
	p := NewPurger(dir, Options{Confirm: false})

	_, err := p.PurgeOrganizationIdentities(context.Background(), "acme_corp")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
	assert.Zero(t, dir.calls)
}

func TestPurgeOrganizationIdentities_RequiresOrgCode(t *testing.T) {
	dir := &mockDirectory{}
	p := NewPurger(dir, Options{Confirm: true})

	_, err := p.PurgeOrganizationIdentities(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOrganisationRequired)
	assert.Zero(t, dir.calls)
}

func TestPurgeOrganizationIdentities_FullRun(t *testing.T) {
	dir := &mockDirectory{
		orgUsers: map[string][]domain.OrganizationUser{
			"acme_corp": {{ID: "u1"}, {ID: "u2"}},
		},
		identities: map[string][]domain.Identity{
			"u1": {{ID: "i1", Type: "email", IsPrimary: true}},
			"u2": {{ID: "i2", Type: "oauth2:google"}},
		},
	}
	p := NewPurger(dir, Options{Confirm: true})

	totals, err := p.PurgeOrganizationIdentities(context.Background(), "acme_corp")
	require.NoError(t, err)
	assert.Equal(t, domain.RunTotals{
		UsersProcessed:      2,
		IdentitiesProcessed: 2,
		IdentitiesDeleted:   2,
		IdentitiesFailed:    0,
	}, totals)
	assert.Equal(t, []string{"i1", "i2"}, dir.deletedIDs)
}

func TestPurgeOrganizationIdentities_PerItemFailureToleratedAndCounted(t *testing.T) {
	dir := &mockDirectory{
		orgUsers: map[string][]domain.OrganizationUser{
			"acme_corp": {{ID: "u1"}, {ID: "u2"}},
		},
		identities: map[string][]domain.Identity{
			"u1": {{ID: "i1"}, {ID: "i2"}},
			"u2": {{ID: "i3"}},
		},
		failDeletes: map[string]error{
			"i2": fmt.Errorf("server error"),
		},
	}
	p := NewPurger(dir, Options{Confirm: true})

	totals, err := p.PurgeOrganizationIdentities(context.Background(), "acme_corp")
	require.NoError(t, err)
	assert.Equal(t, domain.RunTotals{
		UsersProcessed:      2,
		IdentitiesProcessed: 3,
		IdentitiesDeleted:   2,
		IdentitiesFailed:    1,
	}, totals)
	assert.Equal(t, []string{"i1", "i3"}, dir.deletedIDs, "the failed identity does not stop the run")
}

func TestPurgeOrganizationIdentities_DuplicateAcrossPagesDeletedOnce(t *testing.T) {
	dir := &mockDirectory{
		orgUsers: map[string][]domain.OrganizationUser{
			"acme_corp": {{ID: "u1"}},
		},
		identities: map[string][]domain.Identity{
			"u1": {{ID: "a"}, {ID: "b"}, {ID: "a"}},
		},
	}
	p := NewPurger(dir, Options{Confirm: true})

	totals, err := p.PurgeOrganizationIdentities(context.Background(), "acme_corp")
	require.NoError(t, err)
	assert.Equal(t, 2, totals.IdentitiesProcessed)
	assert.Equal(t, []string{"a", "b"}, dir.deletedIDs)
}
