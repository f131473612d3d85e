package models

// User represents a registered user account.
//
// Users are created implicitly the first time an avatar operation runs for
// their id (idempotent upsert). The service tracks nothing about a user
// beyond the opaque identifier issued by the auth provider.
type User struct {
	// ID is the opaque identifier from the authentication token's subject.
	ID string `json:"id"`
}
