package models

import "time"

// User is the read-only projection of an identity-provider account. The
// identity service owns these rows; the catalog only joins against them.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionUser is the authenticated caller as reported by the identity
// collaborator's get-session endpoint.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Email string `json:"email"`
}
