package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the tenant boundary; every listed collection is scoped by one.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership joins the current user to a workspace with a role.
// Fetched from workspace_members with the workspace row embedded.
type Membership struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Role        string    `json:"role"` // "owner", "admin", "member"
	Workspace   Workspace `json:"workspaces"`
}
