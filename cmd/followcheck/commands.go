package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/information-sharing-networks/followcheck/internal/client"
	"github.com/information-sharing-networks/followcheck/internal/config"
	"github.com/information-sharing-networks/followcheck/internal/harness"
	"github.com/information-sharing-networks/followcheck/internal/logger"
	"github.com/information-sharing-networks/followcheck/internal/version"
	"github.com/spf13/cobra"
)

var usageLines = []string{
	"login",
	"follow <userId>",
	"unfollow <userId>",
	"followers <userId>",
	"following <userId>",
	"is-following <userId>",
	"stats <userId>",
	"me",
	"token",
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Invalid command. Available commands:")
	for _, line := range usageLines {
		fmt.Fprintln(w, line)
	}
}

// app holds what the commands share, it is set up by the root command's PersistentPreRunE
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *client.Client
	harness *harness.Harness

	// flag values, applied over the environment config
	baseURL  string
	email    string
	password string
	logLevel string
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.APIBaseURL = a.baseURL
	}
	if flags.Changed("email") {
		cfg.UserEmail = a.email
	}
	if flags.Changed("password") {
		cfg.UserPassword = a.password
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	a.cfg = cfg
	a.logger = logger.NewLogger(cmd.ErrOrStderr(), logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	a.client = client.NewClient(cfg.APIBaseURL,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithTransport(logger.Transport(nil, a.logger)),
	)
	a.harness = harness.New(a.client, cmd.OutOrStdout(), a.logger)

	a.logger.Debug("using follow API", slog.String("base_url", cfg.APIBaseURL))
	return nil
}

func (a *app) close() {
	if a.client != nil {
		a.client.Close()
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "followcheck [command] [userId]",
		Short: "Exercise the follow API",
		Long: `followcheck calls the follow API endpoints and prints the responses.

Without a command it runs the full scenario: register two test users, log in as the first,
follow the second, check the relationship and the follow stats, unfollow and check again.`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				printUsage(cmd.OutOrStdout())
				return nil
			}
			return a.harness.RunScenario(cmd.Context(), a.scenario())
		},
	}
	root.Version = version.Get().String()

	// help lists the commands the same way an unknown command does
	root.SetHelpCommand(&cobra.Command{
		Use:   "help",
		Short: "List the available commands",
		Args:  cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printUsage(cmd.OutOrStdout())
		},
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.baseURL, "base-url", "", "follow API base url (default $API_BASE_URL or http://localhost:8000/api)")
	pf.StringVar(&a.email, "email", "", "account used by commands that log in (default $TEST_USER_EMAIL or testuser1@example.com)")
	pf.StringVar(&a.password, "password", "", "password of that account (default $TEST_USER_PASSWORD)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL or info)")

	root.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Log in and print the access token",
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				token, err := a.login(cmd)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			},
		},
		&cobra.Command{
			Use:   "me",
			Short: "Log in and show the current user",
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.login(cmd); err != nil {
					return err
				}
				a.harness.CurrentUser(cmd.Context())
				return nil
			},
		},
		&cobra.Command{
			Use:   "token",
			Short: "Log in and show the claims of the access token",
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				token, err := a.login(cmd)
				if err != nil {
					return err
				}
				return a.printTokenClaims(cmd.OutOrStdout(), token)
			},
		},
		a.userCmd("follow", "Log in and follow a user", true, func(cmd *cobra.Command, id client.UserID) {
			a.harness.FollowUser(cmd.Context(), id)
		}),
		a.userCmd("unfollow", "Log in and unfollow a user", true, func(cmd *cobra.Command, id client.UserID) {
			a.harness.UnfollowUser(cmd.Context(), id)
		}),
		a.userCmd("is-following", "Log in and check whether you follow a user", true, func(cmd *cobra.Command, id client.UserID) {
			a.harness.IsFollowing(cmd.Context(), id)
		}),
		a.userCmd("followers", "List the followers of a user", false, func(cmd *cobra.Command, id client.UserID) {
			a.harness.Followers(cmd.Context(), id)
		}),
		a.userCmd("following", "List the users a user follows", false, func(cmd *cobra.Command, id client.UserID) {
			a.harness.Following(cmd.Context(), id)
		}),
		a.userCmd("stats", "Show the follow stats of a user", false, func(cmd *cobra.Command, id client.UserID) {
			a.harness.FollowStats(cmd.Context(), id)
		}),
	)

	return root
}

// userCmd creates a command that takes a user id. Without the id the usage list is printed and nothing is sent.
func (a *app) userCmd(name, short string, needsLogin bool, run func(*cobra.Command, client.UserID)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <userId>",
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "" {
				printUsage(cmd.OutOrStdout())
				return nil
			}

			if needsLogin {
				if _, err := a.login(cmd); err != nil {
					return err
				}
			}

			run(cmd, client.UserID(args[0]))
			return nil
		},
	}
}

// scenario registers and logs in with the configured account, the secondary account is always the default one
func (a *app) scenario() harness.Scenario {
	s := harness.DefaultScenario()
	s.Primary.Email = a.cfg.UserEmail
	s.Primary.Password = a.cfg.UserPassword
	return s
}

func (a *app) login(cmd *cobra.Command) (string, error) {
	return a.harness.Login(cmd.Context(), a.cfg.UserEmail, a.cfg.UserPassword)
}

func (a *app) printTokenClaims(w io.Writer, token string) error {
	claims, err := client.InspectToken(token, time.Now())
	if err != nil {
		a.logger.Warn("cannot show token claims", slog.String("error", err.Error()))
		fmt.Fprintln(w, token)
		return nil
	}

	fmt.Fprintf(w, "subject:    %s\n", claims.Subject)
	if claims.IssuedAt != nil {
		fmt.Fprintf(w, "issued at:  %s\n", claims.IssuedAt.Format(time.RFC3339))
	}
	if claims.ExpiresAt != nil {
		fmt.Fprintf(w, "expires at: %s (expired: %v)\n", claims.ExpiresAt.Format(time.RFC3339), claims.Expired)
	}
	return nil
}
