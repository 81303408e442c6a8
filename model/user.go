package model

import "time"

// User authenticates via magic links only; there is no password column
// anywhere in the system.
type User struct {
	Code         string    `json:"user_code"`
	Email        string    `json:"user_email"`
	Name         string    `json:"user_name,omitempty"`
	Created      time.Time `json:"user_created"`
	LastActivity time.Time `json:"user_last_activity"`
	Headline     string    `json:"user_headline,omitempty"`
	Thumbnail    string    `json:"user_thumbnail,omitempty"`
}

// UserPublic is the profile projection shown to other users. Email and
// activity timestamps stay private.
type UserPublic struct {
	Code      string `json:"user_code"`
	Name      string `json:"user_name,omitempty"`
	Headline  string `json:"user_headline,omitempty"`
	Thumbnail string `json:"user_thumbnail,omitempty"`
}

func (u *User) Public() UserPublic {
	return UserPublic{Code: u.Code, Name: u.Name, Headline: u.Headline, Thumbnail: u.Thumbnail}
}

// DisplayName is what emails address the user by.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// RequestLinkReq asks for a magic login link.
// swagger:model RequestLinkReq
type RequestLinkReq struct {
	Email string `json:"email" validate:"required,email"`
}
