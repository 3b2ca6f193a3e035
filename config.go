package followcheck

import (
	"net/url"
	"time"
)

/*
config holds values shared by the followcheck packages:
- the default location of the follow API and the accounts used by the test scenario
- endpoint paths, relative to the API base URL
*/

const (
	DefaultAPIBaseURL = "http://localhost:8000/api"

	// accounts created and used by the end-to-end scenario
	PrimaryTestUsername   = "testuser1"
	PrimaryTestEmail      = "testuser1@example.com"
	SecondaryTestUsername = "testuser2"
	SecondaryTestEmail    = "testuser2@example.com"
	TestUserPassword      = "password123"

	// the follow API pages user listings, this is the largest page it serves
	MaxUserListLimit = 100

	// used when HTTP_TIMEOUT is not set. 0 leaves the transport default (no timeout)
	DefaultHTTPTimeout time.Duration = 0
)

// endpoint paths
const (
	LoginPath       = "/users/login"
	RegisterPath    = "/users/register"
	CurrentUserPath = "/users/me"
	UsersPath       = "/users/"
)

// UserPath returns the path of a per-user endpoint, e.g UserPath("42", "follow") = /users/42/follow
func UserPath(userID, resource string) string {
	return "/users/" + url.PathEscape(userID) + "/" + resource
}

var ValidEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"perf":    true,
	"prod":    true,
	"staging": true,
}
