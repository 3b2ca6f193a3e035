package client

import (
	"context"
	"net/http"

	"github.com/information-sharing-networks/followcheck"
)

// FollowUser makes the logged in user a follower of userID
func (c *Client) FollowUser(ctx context.Context, userID string) (*Follow, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, followcheck.UserPath(userID, "follow"), struct{}{}, true)
	if err != nil {
		return nil, err
	}

	var follow Follow
	if err := c.do(req, &follow, "follow"); err != nil {
		return nil, err
	}

	return &follow, nil
}

// UnfollowUser removes the logged in user from the followers of userID
func (c *Client) UnfollowUser(ctx context.Context, userID string) error {
	req, err := c.newJSONRequest(ctx, http.MethodDelete, followcheck.UserPath(userID, "follow"), nil, true)
	if err != nil {
		return err
	}

	return c.do(req, nil, "unfollow")
}

// Followers lists the users following userID
func (c *Client) Followers(ctx context.Context, userID string) ([]Follower, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, followcheck.UserPath(userID, "followers"), nil, false)
	if err != nil {
		return nil, err
	}

	followers := []Follower{}
	if err := c.do(req, &followers, "followers"); err != nil {
		return nil, err
	}

	return followers, nil
}

// Following lists the users that userID follows
func (c *Client) Following(ctx context.Context, userID string) ([]Follower, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, followcheck.UserPath(userID, "following"), nil, false)
	if err != nil {
		return nil, err
	}

	following := []Follower{}
	if err := c.do(req, &following, "following"); err != nil {
		return nil, err
	}

	return following, nil
}

// IsFollowing reports whether the logged in user follows userID
func (c *Client) IsFollowing(ctx context.Context, userID string) (*FollowStatus, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, followcheck.UserPath(userID, "is-following"), nil, true)
	if err != nil {
		return nil, err
	}

	var status FollowStatus
	if err := c.do(req, &status, "is-following"); err != nil {
		return nil, err
	}

	return &status, nil
}

// FollowStats returns the follower/following counts of userID
func (c *Client) FollowStats(ctx context.Context, userID string) (*FollowStats, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, followcheck.UserPath(userID, "follow-stats"), nil, false)
	if err != nil {
		return nil, err
	}

	var stats FollowStats
	if err := c.do(req, &stats, "follow stats"); err != nil {
		return nil, err
	}

	return &stats, nil
}
