package models

import "time"

// User represents an account within the Mingle platform. Password holds the
// bcrypt hash and is never serialized; API responses use Profile instead.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	AvatarURL string
	IsOnline  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the public projection of a user. Friends carry the resolved
// profiles of the user's friend set when the caller asked for them.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl"`
	IsOnline  bool      `json:"isOnline"`
	CreatedAt time.Time `json:"createdAt"`
	Friends   []Profile `json:"friends,omitempty"`
}

// PublicProfile strips credentials from a user record.
func (u User) PublicProfile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		IsOnline:  u.IsOnline,
		CreatedAt: u.CreatedAt,
	}
}

// FriendRequest represents a pending invitation between two users. At most
// one row exists per ordered (FromID, ToID) pair; acceptance removes it.
type FriendRequest struct {
	ID        string
	FromID    string
	ToID      string
	Message   string
	CreatedAt time.Time
}

// Post is a piece of content shared by a user. At least one of Content,
// ImageURL or VideoURL is non-empty.
type Post struct {
	ID        string
	AuthorID  string
	Content   string
	ImageURL  string
	VideoURL  string
	Likes     int
	Dislikes  int
	CreatedAt time.Time
}

// Comment belongs to a post and is removed together with it.
type Comment struct {
	ID        string
	AuthorID  string
	PostID    string
	Content   string
	Likes     int
	Dislikes  int
	CreatedAt time.Time
}

// Story is short-lived content visible only to the author's friends.
type Story struct {
	ID        string
	AuthorID  string
	Content   string
	ImageURL  string
	VideoURL  string
	CreatedAt time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
