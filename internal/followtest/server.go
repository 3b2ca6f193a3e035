// Package followtest provides an in-memory follow API for testing the followcheck client and harness.
//
// The fake implements the request/response contracts of the endpoints followcheck calls (FastAPI style
// {"detail": ...} error bodies, form-encoded login, HS256 bearer tokens) and records every request it serves
// so tests can assert on what was sent.
//
//	srv := followtest.NewServer()
//	defer srv.Close()
//	c := client.NewClient(srv.BaseURL())
package followtest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	secretKey         = "followtest-secret-key"
	accessTokenExpiry = 30 * time.Minute
	maxListLimit      = 100
)

// RecordedRequest is a request received by the fake
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
}

type account struct {
	ID             uuid.UUID
	Username       string
	Email          string
	HashedPassword string
	CreatedAt      time.Time
}

type follow struct {
	ID         uuid.UUID
	FollowerID uuid.UUID
	FollowedID uuid.UUID
	CreatedAt  time.Time
}

// Server is a running fake follow API
type Server struct {
	mu       sync.Mutex
	accounts []*account
	follows  []*follow
	tokens   []string
	requests []RecordedRequest

	httpServer *httptest.Server
}

// NewServer starts the fake. The API is served under /api, like the real service.
func NewServer() *Server {
	s := &Server{}

	r := chi.NewRouter()
	r.Use(s.recordRequest)
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", s.registerHandler)
		r.Post("/login", s.loginHandler)
		r.Get("/", s.listUsersHandler)
		r.With(s.requireAccessToken).Get("/me", s.currentUserHandler)

		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/followers", s.followersHandler)
			r.Get("/following", s.followingHandler)
			r.Get("/follow-stats", s.followStatsHandler)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAccessToken)
				r.Post("/follow", s.followHandler)
				r.Delete("/follow", s.unfollowHandler)
				r.Get("/is-following", s.isFollowingHandler)
			})
		})
	})

	s.httpServer = httptest.NewServer(r)
	return s
}

// BaseURL is the API base url to pass to client.NewClient
func (s *Server) BaseURL() string {
	return s.httpServer.URL + "/api"
}

func (s *Server) Close() {
	s.httpServer.Close()
}

// Requests returns the requests served so far, in order
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

// IssuedTokens returns the access tokens handed out by the login endpoint, in order
func (s *Server) IssuedTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.tokens...)
}

// AddUser creates an account directly, bypassing the register endpoint, and returns its id
func (s *Server) AddUser(username, email, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.createAccount(username, email, password)
	if err != nil {
		return "", err
	}
	return acc.ID.String(), nil
}

func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}
