package harness

import (
	"context"
	"errors"
	"log/slog"

	"github.com/information-sharing-networks/followcheck"
	"github.com/information-sharing-networks/followcheck/internal/client"
)

// ErrNoCurrentUser stops the scenario: every step after login needs the id of the logged in user
var ErrNoCurrentUser = errors.New("current user unavailable")

// Account is a test account created by the scenario
type Account struct {
	Username string
	Email    string
	Password string
}

// Scenario names the two accounts used by RunScenario: Primary logs in and follows Secondary
type Scenario struct {
	Primary   Account
	Secondary Account
}

func DefaultScenario() Scenario {
	return Scenario{
		Primary: Account{
			Username: followcheck.PrimaryTestUsername,
			Email:    followcheck.PrimaryTestEmail,
			Password: followcheck.TestUserPassword,
		},
		Secondary: Account{
			Username: followcheck.SecondaryTestUsername,
			Email:    followcheck.SecondaryTestEmail,
			Password: followcheck.TestUserPassword,
		},
	}
}

// RunScenario exercises the whole follow API: register both accounts, log in as the primary account,
// follow the secondary account, check the relationship and the stats, unfollow and check again.
//
// Steps run one after the other and a failed step does not stop the run (the failure is logged by the step).
// Only a failed login or a missing current user end the scenario early, they are returned as errors.
func (h *Harness) RunScenario(ctx context.Context, s Scenario) error {
	h.CreateTestUser(ctx, s.Primary.Username, s.Primary.Email, s.Primary.Password)
	secondary := h.CreateTestUser(ctx, s.Secondary.Username, s.Secondary.Email, s.Secondary.Password)

	var secondaryID client.UserID
	if secondary != nil {
		secondaryID = secondary.UserID
	}

	if _, err := h.Login(ctx, s.Primary.Email, s.Primary.Password); err != nil {
		return err
	}

	currentUser := h.CurrentUser(ctx)
	if currentUser == nil {
		h.logger.Error("Test error", slog.String("error", ErrNoCurrentUser.Error()))
		return ErrNoCurrentUser
	}

	// before following
	h.FollowStats(ctx, currentUser.UserID)

	h.FollowUser(ctx, secondaryID)
	h.IsFollowing(ctx, secondaryID)
	h.Following(ctx, currentUser.UserID)
	h.Followers(ctx, secondaryID)

	// after following
	h.FollowStats(ctx, currentUser.UserID)
	h.FollowStats(ctx, secondaryID)

	h.UnfollowUser(ctx, secondaryID)
	h.IsFollowing(ctx, secondaryID)

	// after unfollowing
	h.FollowStats(ctx, currentUser.UserID)
	h.FollowStats(ctx, secondaryID)

	h.print("All tests completed!", nil)
	return nil
}
