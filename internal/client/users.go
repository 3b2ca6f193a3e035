package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/information-sharing-networks/followcheck"
)

// RegisterUser creates a new account.
// Registering an account that already exists fails with a ClientError for which IsAlreadyExists is true.
func (c *Client) RegisterUser(ctx context.Context, username, email, password string) (*User, error) {
	registerReq := RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, followcheck.RegisterPath, registerReq, false)
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.do(req, &user, "registration"); err != nil {
		return nil, err
	}

	return &user, nil
}

// CurrentUser returns the account of the logged in user
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, followcheck.CurrentUserPath, nil, true)
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.do(req, &user, "current user"); err != nil {
		return nil, err
	}

	return &user, nil
}

// ListUsers returns a page of user accounts
func (c *Client) ListUsers(ctx context.Context, skip, limit int) ([]User, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	path := fmt.Sprintf("%s?%s", followcheck.UsersPath, query.Encode())

	req, err := c.newJSONRequest(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := c.do(req, &users, "user list"); err != nil {
		return nil, err
	}

	return users, nil
}

// FindUserByEmail pages through the user list looking for the account registered with email.
// It returns nil (and no error) when there is no such account.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	for skip := 0; ; skip += followcheck.MaxUserListLimit {
		users, err := c.ListUsers(ctx, skip, followcheck.MaxUserListLimit)
		if err != nil {
			return nil, err
		}

		for i := range users {
			if users[i].Email == email {
				return &users[i], nil
			}
		}

		if len(users) < followcheck.MaxUserListLimit {
			return nil, nil
		}
	}
}
