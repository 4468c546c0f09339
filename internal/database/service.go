package database

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long a login session stays valid
const SessionTTL = 7 * 24 * time.Hour

// UserService handles account and session operations
type UserService struct {
	repo       *Repository
	signingKey []byte

	allowedDomain  string
	sharedPassword string
	adminEmail     string
}

// NewUserService creates a user service. signingKey signs session
// tokens; allowedDomain restricts which email addresses may log in.
func NewUserService(repo *Repository, signingKey []byte, allowedDomain, sharedPassword, adminEmail string) *UserService {
	return &UserService{
		repo:           repo,
		signingKey:     signingKey,
		allowedDomain:  allowedDomain,
		sharedPassword: sharedPassword,
		adminEmail:     adminEmail,
	}
}

// ErrInvalidCredentials is returned when the email or password is rejected
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// Login validates the credentials, provisions the account on first login
// and returns the user with a fresh session token.
func (s *UserService) Login(email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if !strings.HasSuffix(email, "@"+s.allowedDomain) {
		return nil, "", ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.sharedPassword)) != 1 {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.repo.UserByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		name := displayNameFromEmail(email)
		user = NewUser(email, name, email == s.adminEmail)
		if err := s.repo.CreateUser(user); err != nil {
			return nil, "", err
		}
	}

	token, session, err := s.issueSession(user.UserID)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.CreateSession(session); err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// displayNameFromEmail derives a readable name from the local part of an
// email address: dots become spaces, digits are dropped, words titled.
func displayNameFromEmail(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	local = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, local)

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	name := strings.Join(parts, " ")
	if name == "" {
		return local
	}
	return name
}

func (s *UserService) issueSession(userID string) (string, *Session, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(SessionTTL)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        NewID("sess"),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// Authenticate resolves a session token to its user. The token must
// verify, the session row must still exist and must not be expired.
func (s *UserService) Authenticate(token string) (*User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, nil
	}

	session, err := s.repo.SessionByToken(token)
	if err != nil {
		return nil, err
	}
	if session == nil || time.Now().UTC().After(session.ExpiresAt) {
		return nil, nil
	}

	return s.repo.UserByID(session.UserID)
}

// Logout revokes the session token
func (s *UserService) Logout(token string) error {
	return s.repo.DeleteSession(token)
}

// UpdateProfile applies a partial profile update for the user
func (s *UserService) UpdateProfile(userID string, update ProfileUpdate) (*User, error) {
	return s.repo.UpdateUserProfile(userID, update)
}
