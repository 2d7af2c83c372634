// Package models defines the data types exchanged between the console
// services, the REST transport, and the local state store.
package models

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the signup request body.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the authenticated user's own profile, replaced wholesale on
// every successful login.
type Profile struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// LoginResult is the response of the credential exchange.
type LoginResult struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}
