// Package harness drives the follow API from the console.
//
// Each operation wraps one client call: the response body is printed to the output writer on success, the error
// (with the API's error body when there is one) is logged on failure and the operation returns nil.
// Errors are not returned to the caller, with the exception of Login: every scenario depends on a session,
// so a failed login is reported to the caller and is expected to end the process.
package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/information-sharing-networks/followcheck/internal/client"
)

type Harness struct {
	client *client.Client
	out    io.Writer
	logger *slog.Logger
}

func New(c *client.Client, out io.Writer, logger *slog.Logger) *Harness {
	return &Harness{
		client: c,
		out:    out,
		logger: logger,
	}
}

// print writes a message followed by the indented JSON form of body
func (h *Harness) print(msg string, body any) {
	if body == nil {
		fmt.Fprintln(h.out, msg)
		return
	}

	dat, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		fmt.Fprintf(h.out, "%s %+v\n", msg, body)
		return
	}
	fmt.Fprintf(h.out, "%s %s\n", msg, dat)
}

// fail logs a failed operation. The API's error body is included when the request got as far as a response.
func (h *Harness) fail(msg string, err error) {
	attrs := []any{slog.String("error", err.Error())}

	var clientErr *client.ClientError
	if errors.As(err, &clientErr) {
		attrs = append(attrs, slog.Int("status", clientErr.StatusCode))
		if len(clientErr.Body) > 0 {
			attrs = append(attrs, slog.String("response", string(clientErr.Body)))
		}
	}

	h.logger.Error(msg, attrs...)
}

// missingID logs operations that cannot run because an earlier step did not produce a user id
func (h *Harness) missingID(msg string, userID client.UserID) bool {
	if userID != "" {
		return false
	}
	h.logger.Error(msg, slog.String("error", "user id is empty"))
	return true
}

// Login authenticates as email. The token is kept by the client for the authenticated operations that follow.
func (h *Harness) Login(ctx context.Context, email, password string) (string, error) {
	token, err := h.client.Login(ctx, email, password)
	if err != nil {
		h.fail("Login failed", err)
		return "", fmt.Errorf("login as %s failed: %w", email, err)
	}

	h.print("Login successful, token acquired.", nil)
	return token.AccessToken, nil
}

// CurrentUser fetches the logged in account
func (h *Harness) CurrentUser(ctx context.Context) *client.User {
	user, err := h.client.CurrentUser(ctx)
	if err != nil {
		h.fail("Get current user failed", err)
		return nil
	}

	h.print("Current user:", user)
	return user
}

// CreateTestUser registers an account.
//
// An account that already exists is not an error: the returned user carries the requested username and email,
// and the id of the existing account when it can be found in the user list.
func (h *Harness) CreateTestUser(ctx context.Context, username, email, password string) *client.User {
	user, err := h.client.RegisterUser(ctx, username, email, password)
	if err == nil {
		h.print(fmt.Sprintf("Test user %s created:", username), user)
		return user
	}

	if !client.IsAlreadyExists(err) {
		h.fail(fmt.Sprintf("Create test user %s failed", username), err)
		return nil
	}

	h.print(fmt.Sprintf("User %s already exists, continuing...", username), nil)

	existing := &client.User{Username: username, Email: email}

	found, err := h.client.FindUserByEmail(ctx, email)
	switch {
	case err != nil:
		h.fail(fmt.Sprintf("Look up existing user %s failed", username), err)
	case found == nil:
		h.logger.Warn("existing user not found in user list", slog.String("email", email))
	default:
		existing.UserID = found.UserID
	}

	return existing
}

// FollowUser follows userID as the logged in user
func (h *Harness) FollowUser(ctx context.Context, userID client.UserID) *client.Follow {
	if h.missingID("Follow user failed", userID) {
		return nil
	}

	follow, err := h.client.FollowUser(ctx, userID.String())
	if err != nil {
		h.fail(fmt.Sprintf("Follow user %s failed", userID), err)
		return nil
	}

	h.print(fmt.Sprintf("Successfully followed user %s:", userID), follow)
	return follow
}

// UnfollowUser stops following userID and reports whether the API accepted the request
func (h *Harness) UnfollowUser(ctx context.Context, userID client.UserID) bool {
	if h.missingID("Unfollow user failed", userID) {
		return false
	}

	if err := h.client.UnfollowUser(ctx, userID.String()); err != nil {
		h.fail(fmt.Sprintf("Unfollow user %s failed", userID), err)
		return false
	}

	h.print(fmt.Sprintf("Successfully unfollowed user %s", userID), nil)
	return true
}

// Followers lists the followers of userID
func (h *Harness) Followers(ctx context.Context, userID client.UserID) []client.Follower {
	if h.missingID("Get followers failed", userID) {
		return nil
	}

	followers, err := h.client.Followers(ctx, userID.String())
	if err != nil {
		h.fail(fmt.Sprintf("Get followers for %s failed", userID), err)
		return nil
	}

	h.print(fmt.Sprintf("Followers of user %s:", userID), followers)
	return followers
}

// Following lists the users followed by userID
func (h *Harness) Following(ctx context.Context, userID client.UserID) []client.Follower {
	if h.missingID("Get following failed", userID) {
		return nil
	}

	following, err := h.client.Following(ctx, userID.String())
	if err != nil {
		h.fail(fmt.Sprintf("Get following for %s failed", userID), err)
		return nil
	}

	h.print(fmt.Sprintf("Users that %s is following:", userID), following)
	return following
}

// IsFollowing checks whether the logged in user follows userID
func (h *Harness) IsFollowing(ctx context.Context, userID client.UserID) *client.FollowStatus {
	if h.missingID("Check if following failed", userID) {
		return nil
	}

	status, err := h.client.IsFollowing(ctx, userID.String())
	if err != nil {
		h.fail(fmt.Sprintf("Check if following %s failed", userID), err)
		return nil
	}

	h.print(fmt.Sprintf("Is following user %s:", userID), status)
	return status
}

// FollowStats fetches the follower/following counts of userID
func (h *Harness) FollowStats(ctx context.Context, userID client.UserID) *client.FollowStats {
	if h.missingID("Get follow stats failed", userID) {
		return nil
	}

	stats, err := h.client.FollowStats(ctx, userID.String())
	if err != nil {
		h.fail(fmt.Sprintf("Get follow stats for %s failed", userID), err)
		return nil
	}

	h.print(fmt.Sprintf("Follow stats for user %s:", userID), stats)
	return stats
}
