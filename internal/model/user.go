package model

import "time"

// User represents a registered visitor account.
//
// Accounts come from two places: Google OAuth (the common path — divers log
// in with the account they already have) or email+password. For OAuth users
// GoogleID holds Google's stable subject identifier and PasswordHash is
// empty; for password users it's the reverse. We still generate our own
// internal xid so primary keys never depend on a third party's numbering.
//
// Name and AvatarURL mirror the provider profile ("full name, falling back
// to email" is applied where the user is displayed, not stored).
type User struct {
	ID           string    `json:"id"`
	GoogleID     string    `json:"-"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	AvatarURL    string    `json:"avatarUrl"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName is the name shown on reviews: the profile's full name, or the
// email address when the provider didn't supply one.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
