package model

import "time"

// User represents a registered student who can lend and borrow items.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	School       string     `json:"school,omitempty"`
	Program      string     `json:"program,omitempty"`
	RatingSum    int        `json:"rating_sum"`
	RatingCount  int        `json:"rating_count"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Rating returns the user's average owner rating, or 0 if never rated.
func (u *User) Rating() float64 {
	if u.RatingCount == 0 {
		return 0
	}
	return float64(u.RatingSum) / float64(u.RatingCount)
}

// Profile is the public slice of a user attached to browse and search results.
type Profile struct {
	Username    string  `json:"username"`
	School      string  `json:"school,omitempty"`
	Program     string  `json:"program,omitempty"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

// PublicProfile builds the owner snippet shown alongside items.
func (u *User) PublicProfile() Profile {
	return Profile{
		Username:    u.Username,
		School:      u.School,
		Program:     u.Program,
		Rating:      u.Rating(),
		RatingCount: u.RatingCount,
	}
}
