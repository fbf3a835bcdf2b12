package domain

import (
	"net/mail"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) ValidateEmail() error {
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ValidationErrors{"email": "Invalid email address"}
	}
	return nil
}

func (u User) Session() Session {
	return Session{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Session is the read-only view of the signed-in caller.
type Session struct {
	UserID string
	Email  string
	Role   Role
}

func (s Session) IsAdmin() bool {
	return s.UserID != "" && s.Role == RoleAdmin
}
