package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserID identifies an account. The API sends ids as strings but numeric ids are accepted too.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or a number: %s", data)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string {
	return string(id)
}

// AccessToken is returned by the login endpoint
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is returned by the register, current user and user listing endpoints.
// CreatedAt is kept as sent: the API does not include a timezone in its timestamps.
type User struct {
	UserID         UserID  `json:"user_id,omitempty"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	CoverImage     *string `json:"cover_image,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
	FollowersCount int     `json:"followers_count"`
	FollowingCount int     `json:"following_count"`
}

// RegisterRequest is the body of a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Follow describes a follow relationship
type Follow struct {
	ID         string `json:"id"`
	FollowerID UserID `json:"follower_id"`
	FollowedID UserID `json:"followed_id"`
	CreatedAt  string `json:"created_at"`
}

// Follower is an entry in a followers or following list
type Follower struct {
	UserID         UserID  `json:"user_id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// FollowStatus reports whether the logged in user follows another user
type FollowStatus struct {
	IsFollowing bool `json:"is_following"`
}

// FollowStats holds the follower/following counts of a user
type FollowStats struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
}
