package session

import "time"

// IsValid reports whether s can be used without contacting the server:
// it exists, has an access token, and was acquired no more than
// SessionWindow before now.
func IsValid(s *Session, now time.Time) bool {
	if s == nil || s.AccessToken == "" || s.AcquiredAt.IsZero() {
		return false
	}
	return now.Sub(s.AcquiredAt) <= SessionWindow
}
