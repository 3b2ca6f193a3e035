package followtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type userResponse struct {
	UserID         string  `json:"user_id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
	CoverImage     *string `json:"cover_image"`
	CreatedAt      string  `json:"created_at"`
	FollowersCount int     `json:"followers_count"`
	FollowingCount int     `json:"following_count"`
}

type followResponse struct {
	ID         string `json:"id"`
	FollowerID string `json:"follower_id"`
	FollowedID string `json:"followed_id"`
	CreatedAt  string `json:"created_at"`
}

type followerResponse struct {
	UserID         string  `json:"user_id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

type followStatsResponse struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
}

// errAlreadyExists is returned by createAccount, the message is sent to the client as the error detail
type errAlreadyExists struct {
	detail string
}

func (e errAlreadyExists) Error() string {
	return e.detail
}

// the helpers below expect s.mu to be held

func (s *Server) createAccount(username, email, password string) (*account, error) {
	for _, acc := range s.accounts {
		if acc.Email == email {
			return nil, errAlreadyExists{"Email already registered"}
		}
		if acc.Username == username {
			return nil, errAlreadyExists{"Username already taken"}
		}
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	acc := &account{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}
	s.accounts = append(s.accounts, acc)

	return acc, nil
}

func (s *Server) accountByID(id uuid.UUID) *account {
	for _, acc := range s.accounts {
		if acc.ID == id {
			return acc
		}
	}
	return nil
}

func (s *Server) accountByEmail(email string) *account {
	for _, acc := range s.accounts {
		if acc.Email == email {
			return acc
		}
	}
	return nil
}

// accountFromURL returns the account named by the {userID} path parameter, nil if there is none
func (s *Server) accountFromURL(r *http.Request) *account {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		return nil
	}
	return s.accountByID(id)
}

func (s *Server) findFollow(followerID, followedID uuid.UUID) int {
	for i, f := range s.follows {
		if f.FollowerID == followerID && f.FollowedID == followedID {
			return i
		}
	}
	return -1
}

func (s *Server) followStats(id uuid.UUID) followStatsResponse {
	var stats followStatsResponse
	for _, f := range s.follows {
		if f.FollowedID == id {
			stats.FollowersCount++
		}
		if f.FollowerID == id {
			stats.FollowingCount++
		}
	}
	return stats
}

func (s *Server) toUserResponse(acc *account) userResponse {
	stats := s.followStats(acc.ID)
	return userResponse{
		UserID:         acc.ID.String(),
		Username:       acc.Username,
		Email:          acc.Email,
		CreatedAt:      acc.CreatedAt.Format(timestampFormat),
		FollowersCount: stats.FollowersCount,
		FollowingCount: stats.FollowingCount,
	}
}

// paginate applies the skip and limit query parameters (defaults 0 and 100)
func paginate[T any](r *http.Request, items []T) []T {
	skip, err := strconv.Atoi(r.URL.Query().Get("skip"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	if skip >= len(items) {
		return []T{}
	}
	end := min(skip+limit, len(items))
	return items[skip:end]
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, fmt.Sprintf("could not decode request body: %v", err))
		return
	}

	var missing []string
	if req.Username == "" {
		missing = append(missing, "username")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		respondWithValidationError(w, "body", missing...)
		return
	}
	if !strings.Contains(req.Email, "@") {
		respondWithError(w, http.StatusUnprocessableEntity, "value is not a valid email address")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.createAccount(req.Username, req.Email, req.Password)
	if err != nil {
		var exists errAlreadyExists
		if errors.As(err, &exists) {
			respondWithError(w, http.StatusBadRequest, exists.detail)
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, s.toUserResponse(acc))
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, fmt.Sprintf("could not parse form: %v", err))
		return
	}

	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	var missing []string
	if email == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		respondWithValidationError(w, "body", missing...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accountByEmail(email)
	if acc == nil || checkPasswordHash(acc.HashedPassword, password) != nil {
		respondWithError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	accessToken, err := generateAccessToken(acc.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.tokens = append(s.tokens, accessToken)

	respondWithJSON(w, http.StatusOK, map[string]string{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}

func (s *Server) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accountByID(contextAccountID(r.Context()))
	if acc == nil {
		respondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	respondWithJSON(w, http.StatusOK, s.toUserResponse(acc))
}

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]userResponse, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, s.toUserResponse(acc))
	}

	respondWithJSON(w, http.StatusOK, paginate(r, users))
}

func (s *Server) followHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.accountFromURL(r)
	if target == nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	followerID := contextAccountID(r.Context())
	if followerID == target.ID {
		respondWithError(w, http.StatusBadRequest, "You cannot follow yourself")
		return
	}

	if s.findFollow(followerID, target.ID) >= 0 {
		respondWithError(w, http.StatusBadRequest, "Could not create follow relationship")
		return
	}

	f := &follow{
		ID:         uuid.New(),
		FollowerID: followerID,
		FollowedID: target.ID,
		CreatedAt:  time.Now().UTC(),
	}
	s.follows = append(s.follows, f)

	respondWithJSON(w, http.StatusOK, followResponse{
		ID:         f.ID.String(),
		FollowerID: f.FollowerID.String(),
		FollowedID: f.FollowedID.String(),
		CreatedAt:  f.CreatedAt.Format(timestampFormat),
	})
}

func (s *Server) unfollowHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.accountFromURL(r)
	if target == nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	i := s.findFollow(contextAccountID(r.Context()), target.ID)
	if i < 0 {
		respondWithError(w, http.StatusNotFound, "Follow relationship not found")
		return
	}
	s.follows = append(s.follows[:i], s.follows[i+1:]...)

	respondWithJSON(w, http.StatusNoContent, nil)
}

func (s *Server) followersHandler(w http.ResponseWriter, r *http.Request) {
	s.listFollows(w, r, func(f *follow) uuid.UUID { return f.FollowedID }, func(f *follow) uuid.UUID { return f.FollowerID })
}

func (s *Server) followingHandler(w http.ResponseWriter, r *http.Request) {
	s.listFollows(w, r, func(f *follow) uuid.UUID { return f.FollowerID }, func(f *follow) uuid.UUID { return f.FollowedID })
}

// listFollows lists the accounts on the other side (other) of the follows that match the account in the url (self)
func (s *Server) listFollows(w http.ResponseWriter, r *http.Request, self, other func(*follow) uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accountFromURL(r)
	if acc == nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	res := []followerResponse{}
	for _, f := range s.follows {
		if self(f) != acc.ID {
			continue
		}
		if o := s.accountByID(other(f)); o != nil {
			res = append(res, followerResponse{UserID: o.ID.String(), Username: o.Username})
		}
	}

	respondWithJSON(w, http.StatusOK, paginate(r, res))
}

func (s *Server) isFollowingHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.accountFromURL(r)
	if target == nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	isFollowing := s.findFollow(contextAccountID(r.Context()), target.ID) >= 0
	respondWithJSON(w, http.StatusOK, map[string]bool{"is_following": isFollowing})
}

func (s *Server) followStatsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accountFromURL(r)
	if acc == nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	respondWithJSON(w, http.StatusOK, s.followStats(acc.ID))
}
