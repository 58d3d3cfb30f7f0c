package models

import "time"

// Session is one refresh-token lineage entry. Rows are never deleted:
// revocation and rotation only ever set RevokedAt/LastUsedAt, so the table
// doubles as an audit trail.
type Session struct {
	ID               string     `json:"id"`
	RefreshTokenHash string     `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty"`
}

// Active reports whether the session may still be rotated at the given
// instant. Once RevokedAt is set the session is permanently dead.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
