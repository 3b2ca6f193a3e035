package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/information-sharing-networks/followcheck"
	"github.com/information-sharing-networks/followcheck/internal/followtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestClient(t *testing.T) (*followtest.Server, *Client) {
	t.Helper()

	srv := followtest.NewServer()
	c := NewClient(srv.BaseURL())
	t.Cleanup(func() {
		c.Close()
		srv.Close()
	})
	return srv, c
}

// addUser creates an account on the fake server and returns its id
func addUser(t *testing.T, srv *followtest.Server, username string) string {
	t.Helper()

	id, err := srv.AddUser(username, username+"@example.com", followcheck.TestUserPassword)
	require.NoError(t, err)
	return id
}

func TestLogin(t *testing.T) {
	srv, c := setupTestClient(t)
	ctx := context.Background()
	addUser(t, srv, "testuser1")

	t.Run("wrong password", func(t *testing.T) {
		_, err := c.Login(ctx, "testuser1@example.com", "wrongpassword")
		require.Error(t, err)

		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, http.StatusUnauthorized, clientErr.StatusCode)
		assert.Equal(t, "Incorrect email or password", clientErr.Detail)
		assert.Empty(t, c.AccessToken())
	})

	t.Run("valid credentials", func(t *testing.T) {
		token, err := c.Login(ctx, "testuser1@example.com", followcheck.TestUserPassword)
		require.NoError(t, err)

		issued := srv.IssuedTokens()
		require.Len(t, issued, 1)
		assert.Equal(t, issued[0], token.AccessToken)
		assert.Equal(t, "bearer", token.TokenType)
		assert.Equal(t, issued[0], c.AccessToken())
	})

	t.Run("login is form encoded", func(t *testing.T) {
		requests := srv.Requests()
		require.NotEmpty(t, requests)
		last := requests[len(requests)-1]
		assert.Equal(t, http.MethodPost, last.Method)
		assert.Equal(t, "/api"+followcheck.LoginPath, last.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", last.ContentType)
	})

	t.Run("failed login keeps the previous token", func(t *testing.T) {
		before := c.AccessToken()
		_, err := c.Login(ctx, "nobody@example.com", "password")
		require.Error(t, err)
		assert.Equal(t, before, c.AccessToken())
	})
}

func TestLoginAcceptsAnySuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"access_token":"created-token","token_type":"bearer"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	defer c.Close()

	token, err := c.Login(context.Background(), "testuser1@example.com", followcheck.TestUserPassword)
	require.NoError(t, err)
	assert.Equal(t, "created-token", token.AccessToken)
	assert.Equal(t, "created-token", c.AccessToken())
}

func TestRegisterUser(t *testing.T) {
	_, c := setupTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		username     string
		email        string
		password     string
		wantStatus   int
		wantExisting bool
	}{
		{
			name:     "new user",
			username: "testuser1",
			email:    "testuser1@example.com",
			password: followcheck.TestUserPassword,
		},
		{
			name:         "email already registered",
			username:     "someone-else",
			email:        "testuser1@example.com",
			password:     followcheck.TestUserPassword,
			wantStatus:   http.StatusBadRequest,
			wantExisting: true,
		},
		{
			name:         "username already taken",
			username:     "testuser1",
			email:        "other@example.com",
			password:     followcheck.TestUserPassword,
			wantStatus:   http.StatusBadRequest,
			wantExisting: true,
		},
		{
			name:       "missing password",
			username:   "testuser2",
			email:      "testuser2@example.com",
			password:   "",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := c.RegisterUser(ctx, tt.username, tt.email, tt.password)

			if tt.wantStatus == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, user.UserID)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, StatusCode(err))
			assert.Equal(t, tt.wantExisting, IsAlreadyExists(err))
		})
	}
}

func TestAuthenticatedRequestsUseLoginToken(t *testing.T) {
	srv, c := setupTestClient(t)
	ctx := context.Background()

	addUser(t, srv, "testuser1")
	targetID := addUser(t, srv, "testuser2")

	_, err := c.Login(ctx, "testuser1@example.com", followcheck.TestUserPassword)
	require.NoError(t, err)

	_, err = c.CurrentUser(ctx)
	require.NoError(t, err)
	_, err = c.FollowUser(ctx, targetID)
	require.NoError(t, err)
	_, err = c.IsFollowing(ctx, targetID)
	require.NoError(t, err)
	err = c.UnfollowUser(ctx, targetID)
	require.NoError(t, err)
	_, err = c.FollowStats(ctx, targetID)
	require.NoError(t, err)

	wantHeader := "Bearer " + srv.IssuedTokens()[0]

	followPath := "/api" + followcheck.UserPath(targetID, "follow")
	authenticated := map[string]bool{
		"POST /api/users/login": false,
		"GET /api/users/me":     true,
		"POST " + followPath:    true,
		"DELETE " + followPath:  true,
		"GET /api" + followcheck.UserPath(targetID, "is-following"): true,
		"GET /api" + followcheck.UserPath(targetID, "follow-stats"): false,
	}

	for _, req := range srv.Requests() {
		key := req.Method + " " + req.Path
		wantAuth, ok := authenticated[key]
		require.True(t, ok, "unexpected request %s", key)

		if wantAuth {
			assert.Equal(t, wantHeader, req.Authorization, key)
		} else {
			assert.Empty(t, req.Authorization, key)
		}
	}
}

func TestAuthenticatedRequestBeforeLogin(t *testing.T) {
	srv, c := setupTestClient(t)

	_, err := c.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))

	requests := srv.Requests()
	require.Len(t, requests, 1)
	assert.Empty(t, requests[0].Authorization)
}

func TestFollowLifecycle(t *testing.T) {
	srv, c := setupTestClient(t)
	ctx := context.Background()

	userA := addUser(t, srv, "testuser1")
	userB := addUser(t, srv, "testuser2")

	_, err := c.Login(ctx, "testuser1@example.com", followcheck.TestUserPassword)
	require.NoError(t, err)

	statsA, err := c.FollowStats(ctx, userA)
	require.NoError(t, err)
	statsB, err := c.FollowStats(ctx, userB)
	require.NoError(t, err)

	follow, err := c.FollowUser(ctx, userB)
	require.NoError(t, err)
	assert.Equal(t, UserID(userA), follow.FollowerID)
	assert.Equal(t, UserID(userB), follow.FollowedID)

	status, err := c.IsFollowing(ctx, userB)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)

	following, err := c.Following(ctx, userA)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, UserID(userB), following[0].UserID)
	assert.Equal(t, "testuser2", following[0].Username)

	followers, err := c.Followers(ctx, userB)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, UserID(userA), followers[0].UserID)

	afterA, err := c.FollowStats(ctx, userA)
	require.NoError(t, err)
	afterB, err := c.FollowStats(ctx, userB)
	require.NoError(t, err)
	assert.Equal(t, statsA.FollowingCount+1, afterA.FollowingCount)
	assert.Equal(t, statsA.FollowersCount, afterA.FollowersCount)
	assert.Equal(t, statsB.FollowersCount+1, afterB.FollowersCount)
	assert.Equal(t, statsB.FollowingCount, afterB.FollowingCount)

	// following twice is rejected
	_, err = c.FollowUser(ctx, userB)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))

	require.NoError(t, c.UnfollowUser(ctx, userB))

	status, err = c.IsFollowing(ctx, userB)
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)

	finalA, err := c.FollowStats(ctx, userA)
	require.NoError(t, err)
	finalB, err := c.FollowStats(ctx, userB)
	require.NoError(t, err)
	assert.Equal(t, *statsA, *finalA)
	assert.Equal(t, *statsB, *finalB)

	following, err = c.Following(ctx, userA)
	require.NoError(t, err)
	assert.Empty(t, following)

	err = c.UnfollowUser(ctx, userB)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestUnknownUser(t *testing.T) {
	_, c := setupTestClient(t)

	_, err := c.FollowStats(context.Background(), "does-not-exist")
	require.Error(t, err)

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusNotFound, clientErr.StatusCode)
	assert.Equal(t, "User not found", clientErr.Detail)
	assert.JSONEq(t, `{"detail":"User not found"}`, clientErr.Payload())
}

func TestFindUserByEmail(t *testing.T) {
	srv, c := setupTestClient(t)
	ctx := context.Background()

	// more than one page of users
	var lastID string
	for i := 0; i < followcheck.MaxUserListLimit+20; i++ {
		lastID = addUser(t, srv, fmt.Sprintf("user%03d", i))
	}

	user, err := c.FindUserByEmail(ctx, fmt.Sprintf("user%03d@example.com", followcheck.MaxUserListLimit+19))
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, UserID(lastID), user.UserID)

	user, err = c.FindUserByEmail(ctx, "missing@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestConnectionError(t *testing.T) {
	srv := followtest.NewServer()
	baseURL := srv.BaseURL()
	srv.Close()

	c := NewClient(baseURL)
	defer c.Close()

	_, err := c.FollowStats(context.Background(), "42")
	require.Error(t, err)

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 0, clientErr.StatusCode)
	assert.Contains(t, clientErr.Error(), "network error")
	assert.Equal(t, clientErr.LogMessage, clientErr.Payload())
	assert.NotNil(t, errors.Unwrap(clientErr))
}

func TestCancelledContext(t *testing.T) {
	_, c := setupTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Followers(ctx, "42")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
