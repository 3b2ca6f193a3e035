package harness

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/information-sharing-networks/followcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioRequests is the sequence of endpoints called by a successful scenario run against a fresh service
var scenarioRequests = []string{
	"POST /api/users/register",
	"POST /api/users/register",
	"POST /api/users/login",
	"GET /api/users/me",
	"GET follow-stats",
	"POST follow",
	"GET is-following",
	"GET following",
	"GET followers",
	"GET follow-stats",
	"GET follow-stats",
	"DELETE follow",
	"GET is-following",
	"GET follow-stats",
	"GET follow-stats",
}

func requestKey(method, path string) string {
	if strings.HasPrefix(path, "/api/users/") && strings.Count(path, "/") == 4 {
		return method + " " + path[strings.LastIndex(path, "/")+1:]
	}
	return method + " " + path
}

func TestRunScenario(t *testing.T) {
	th := setupTestHarness(t)

	err := th.RunScenario(context.Background(), DefaultScenario())
	require.NoError(t, err)

	requests := th.srv.Requests()
	got := make([]string, 0, len(requests))
	for _, r := range requests {
		got = append(got, requestKey(r.Method, r.Path))
	}
	assert.Equal(t, scenarioRequests, got)

	out := th.out.String()
	assert.Contains(t, out, "Test user testuser1 created:")
	assert.Contains(t, out, "Test user testuser2 created:")
	assert.Contains(t, out, "Login successful, token acquired.")
	assert.True(t, strings.HasSuffix(out, "All tests completed!\n"))

	// following is reported before the unfollow, not following after it
	following := strings.Index(out, `"is_following": true`)
	notFollowing := strings.Index(out, `"is_following": false`)
	require.GreaterOrEqual(t, following, 0)
	require.GreaterOrEqual(t, notFollowing, 0)
	assert.Less(t, following, notFollowing)

	assert.NotContains(t, th.logs.String(), `"level":"ERROR"`)
}

func TestRunScenarioWithExistingUsers(t *testing.T) {
	th := setupTestHarness(t)
	th.addUser(t, followcheck.PrimaryTestUsername, followcheck.TestUserPassword)
	th.addUser(t, followcheck.SecondaryTestUsername, followcheck.TestUserPassword)

	err := th.RunScenario(context.Background(), DefaultScenario())
	require.NoError(t, err)

	out := th.out.String()
	assert.Contains(t, out, "User testuser1 already exists, continuing...")
	assert.Contains(t, out, "User testuser2 already exists, continuing...")
	assert.Contains(t, out, `"is_following": true`)
	assert.Contains(t, out, "All tests completed!")
	assert.NotContains(t, th.logs.String(), `"level":"ERROR"`)
}

func TestRunScenarioStopsWhenLoginFails(t *testing.T) {
	th := setupTestHarness(t)
	th.addUser(t, followcheck.PrimaryTestUsername, "a-different-password")

	err := th.RunScenario(context.Background(), DefaultScenario())
	require.Error(t, err)

	requests := th.srv.Requests()
	last := requests[len(requests)-1]
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "/api"+followcheck.LoginPath, last.Path)
	assert.NotContains(t, th.out.String(), "All tests completed!")
}
