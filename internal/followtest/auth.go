package followtest

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type contextKey struct {
	name string
}

var accountIDKey = contextKey{"account-id"}

var bearerRe = regexp.MustCompile(`^\s*(?i)\bbearer\b\s*([^\s]+)\s*$`)

func hashPassword(password string) (string, error) {
	dat, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(dat), nil
}

func checkPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// create a JWT signed with HS256, the subject is the account id
func generateAccessToken(accountID uuid.UUID) (string, error) {
	issuedAt := time.Now()

	claims := &jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(accessTokenExpiry)),
		Subject:   accountID.String(),
	}

	signedAccessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("could not sign JWT: %v", err)
	}
	return signedAccessToken, nil
}

func bearerTokenFromHeader(headers http.Header) (string, error) {
	authorizationHeaderValue := headers.Get("Authorization")
	if authorizationHeaderValue == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	bearerToken := bearerRe.ReplaceAllString(authorizationHeaderValue, "$1")
	if bearerToken == authorizationHeaderValue {
		return "", fmt.Errorf("authorization header format must be Bearer {token}")
	}

	return bearerToken, nil
}

// requireAccessToken rejects requests without a valid access token for an existing account.
// The account id is added to the request context.
func (s *Server) requireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearerToken, err := bearerTokenFromHeader(r.Header)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims := jwt.RegisteredClaims{}
		_, err = jwt.ParseWithClaims(bearerToken, &claims, func(token *jwt.Token) (any, error) {
			return []byte(secretKey), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		accountID, err := uuid.Parse(claims.Subject)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		acc := s.accountByID(accountID)
		s.mu.Unlock()
		if acc == nil {
			respondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func contextAccountID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(accountIDKey).(uuid.UUID)
	return id
}
