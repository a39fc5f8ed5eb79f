package kinde

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers_AccumulatesAcrossPages(t *testing.T) {
	var tokensSeen []string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", serveToken(nil))
	mux.HandleFunc("/api/v1/users", func(w http.ResponseWriter, r *http.Request) {
		next := r.URL.Query().Get("next_token")
		tokensSeen = append(tokensSeen, next)
		assert.Equal(t, "2", r.URL.Query().Get("page_size"))

		switch next {
		case "":
			fmt.Fprint(w, `{"code":"OK","users":[{"id":"u1"},{"id":"u2"}],"next_token":"t1"}`)
		case "t1":
			fmt.Fprint(w, `{"code":"OK","users":[{"id":"u3"}]}`)
		default:
			t.Errorf("unexpected next_token %q", next)
		}
	})

	c := newTestClient(t, mux)
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids)
	assert.Equal(t, []string{"", "t1"}, tokensSeen)
}

func TestListUsers_StallGuardTerminates(t *testing.T) {
	apiCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", serveToken(nil))
	mux.HandleFunc("/api/v1/users", func(w http.ResponseWriter, _ *http.Request) {
		apiCalls++
		// A misbehaving API that keeps handing back the same token.
		fmt.Fprint(w, `{"code":"OK","users":[{"id":"u1"},{"id":"u2"}],"next_token":"t1"}`)
	})

	c := newTestClient(t, mux)
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, apiCalls, "the repeated token stops pagination")
	assert.Len(t, users, 4)
}

func TestListUsers_EmptyPageWithTokenTerminates(t *testing.T) {
	apiCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", serveToken(nil))
	mux.HandleFunc("/api/v1/users", func(w http.ResponseWriter, _ *http.Request) {
		apiCalls++
		fmt.Fprint(w, `{"code":"OK","users":[],"next_token":"t9"}`)
	})

	c := newTestClient(t, mux)
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 1, apiCalls)
}

func TestListUsers_UnparsableBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", serveToken(nil))
	mux.HandleFunc("/api/v1/users", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `not json`)
	})

	c := newTestClient(t, mux)
	_, err := c.ListUsers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPageFetch)
}

func TestDeleteUser(t *testing.T) {
	var deletedID string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", serveToken(nil))
	mux.HandleFunc("/api/v1/user", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deletedID = r.URL.Query().Get("id")
		fmt.Fprint(w, `{"code":"OK","message":"User successfully removed"}`)
	})

	c := newTestClient(t, mux)
	err := c.DeleteUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", deletedID)
}

func TestDeleteUser_FailureCarriesStatusAndMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", serveToken(nil))
	mux.HandleFunc("/api/v1/user", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errors":[{"code":"USER_INVALID","message":"user not found"}]}`)
	})

	c := newTestClient(t, mux)
	err := c.DeleteUser(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "USER_INVALID: user not found")
}
