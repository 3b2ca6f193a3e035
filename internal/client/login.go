package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/information-sharing-networks/followcheck"
)

// Login authenticates with the follow API using a form-encoded username (the account email) and password.
//
// On success the access token is stored on the client and sent with every authenticated request that follows.
// A failed login leaves any previous token in place.
func (c *Client) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	endpoint := fmt.Sprintf("%s%s", c.baseURL, followcheck.LoginPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, NewClientInternalError(err, "creating login request")
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewClientConnectionError(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, NewClientApiError(res)
	}

	var accessToken AccessToken
	if err := json.NewDecoder(res.Body).Decode(&accessToken); err != nil {
		return nil, NewClientInternalError(err, "decoding access token response")
	}

	if accessToken.AccessToken == "" {
		return nil, NewClientInternalError(fmt.Errorf("access_token missing"), "reading access token response")
	}

	c.accessToken = accessToken.AccessToken

	return &accessToken, nil
}
