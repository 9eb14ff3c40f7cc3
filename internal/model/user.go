// Package model defines the records passed between the data-access, service
// and HTTP layers.
//
// JSON field names are camelCase because that is what API clients send and
// receive; the storage layer maps them to snake_case columns itself.
package model

// User is a registered account as the API exposes it.
//
// WHY NO PASSWORD FIELD?
// The bcrypt digest lives in UserAuth, which only the data-access layer and
// the auth service ever see. A User can be encoded to JSON anywhere without
// risk of leaking it.
type User struct {
	ID        int64  `json:"-"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// UserAuth is a User together with its stored password digest.
type UserAuth struct {
	User
	PasswordHash string
}

// NewUser is the input to registration and admin user creation.
// Password is plaintext here; the service hashes it before storage.
type NewUser struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}
