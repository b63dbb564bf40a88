package models

import "time"

// User is an account identity. PasswordHash normally holds a bcrypt hash;
// rows created before hashing was introduced may still hold plaintext,
// which the login flow tolerates (see services.AuthService).
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// Public returns a copy safe to hand to transport layers: the stored
// password credential is never included.
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}
