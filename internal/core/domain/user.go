package domain

import "time"

// UnknownUserID is the sentinel identifier for a user that has not been persisted
// or could not be found.
const UnknownUserID = -1

// User mirrors the persisted representation in the users table.
// Password holds the argon2id digest produced with Salt; plaintext passwords
// never appear on this struct.
type User struct {
	UserID    int
	Username  string
	Nickname  string
	Email     string
	Password  []byte
	Salt      []byte
	CreatedAt time.Time
	Valid     bool
}

// Basic projects the externally visible subset of the user record.
// Password and Salt are deliberately absent.
func (u User) Basic() UserBasic {
	return UserBasic{
		UserID:    u.UserID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// UserBasic is the read model returned by profile lookups.
type UserBasic struct {
	UserID    int       `json:"userid"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserUpdate enumerates the updatable user fields. A nil pointer means the
// field is untouched. Password carries the digest already derived with the
// user's stored salt; the plaintext never reaches the repository.
type UserUpdate struct {
	Username *string
	Nickname *string
	Email    *string
	Password []byte
}

// Empty reports whether the update would touch no columns.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Nickname == nil && u.Email == nil && len(u.Password) == 0
}
