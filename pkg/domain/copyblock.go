package domain

import (
	"time"

	"github.com/google/uuid"
)

// CopyBlock is a reusable piece of marketing copy. Flat list, no children.
type CopyBlock struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Type        string    `json:"type,omitempty"`
	Intent      string    `json:"intent,omitempty"`
	Tone        string    `json:"tone,omitempty"`
	Status      string    `json:"status,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
