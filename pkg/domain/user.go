package domain

import "github.com/google/uuid"

// UserRef identifies the signed-in user. The client never owns user rows;
// this is just the reference the auth endpoint hands back.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
