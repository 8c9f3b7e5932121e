// Package session manages the locally stored bearer-token session and the
// lifecycle that turns it into an authenticated identity.
//
// A lifecycle run loads the stored session, checks it against SessionWindow,
// fetches the identity, and on failure exchanges the refresh token once and
// retries once. Every run ends in exactly one Outcome: Resolved with the
// identity, or Redirect with a reason for the user.
package session

import (
	"strings"
	"time"
)

// SessionWindow is how long an access token is trusted without asking the server.
const SessionWindow = 10 * time.Minute

// Storage keys owned by Store.
const (
	KeyToken        = "token"
	KeyLoginTime    = "loginTime"
	KeyRefreshToken = "refresh_token"
)

// Session is the stored credential set.
// AcquiredAt is stamped by Store when AccessToken is written.
type Session struct {
	AccessToken  string
	AcquiredAt   time.Time
	RefreshToken string
}

// HasRefreshToken reports whether a refresh token is stored.
func (s *Session) HasRefreshToken() bool {
	return s != nil && s.RefreshToken != ""
}

// Age returns how long ago the access token was acquired.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.AcquiredAt)
}

// Remaining returns the time left in the session window, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	left := SessionWindow - s.Age(now)
	if left < 0 {
		return 0
	}
	return left
}

// Tokens is the reply of a token exchange (login or refresh).
// RefreshToken is empty when the server did not issue or rotate one.
type Tokens struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// DefaultRole is shown when the server omits the role.
const DefaultRole = "User"

// Identity is the authenticated user's profile as returned by the identity endpoint.
type Identity struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
}

// RoleName returns the role, or DefaultRole when none was sent.
func (i *Identity) RoleName() string {
	if i.Role == "" {
		return DefaultRole
	}
	return i.Role
}

// FullName joins first and last name.
func (i *Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// Initials returns up to two upper-case letters for an avatar: the first
// letters of the first and last word of the name, or the first letter of
// the email when the name is blank.
func (i *Identity) Initials() string {
	parts := strings.Fields(i.FullName())
	switch len(parts) {
	case 0:
		return firstLetter(i.Email)
	case 1:
		return firstLetter(parts[0])
	default:
		return firstLetter(parts[0]) + firstLetter(parts[len(parts)-1])
	}
}

func firstLetter(s string) string {
	for _, r := range s {
		return strings.ToUpper(string(r))
	}
	return ""
}
