package domain

import (
	"time"

	"github.com/google/uuid"
)

// Board groups creative assets. One level of nesting only: board, sub-board,
// asset.
type Board struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsFavorite  bool      `json:"is_favorite"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubBoard is a second-level grouping inside a board, ordered by Position.
type SubBoard struct {
	ID          uuid.UUID `json:"id"`
	BoardID     uuid.UUID `json:"board_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	IsDeleted   bool      `json:"is_deleted"`
}

// StorageAsset is a binary creative file stored remotely. ArchivedAt set
// means soft-deleted: archived assets are excluded from counts and listings.
type StorageAsset struct {
	ID            uuid.UUID  `json:"id"`
	WorkspaceID   uuid.UUID  `json:"workspace_id"`
	Name          string     `json:"name"`
	FilePath      string     `json:"file_path"`
	FileURL       string     `json:"file_url,omitempty"`
	MimeType      string     `json:"mime_type"`
	Size          *int64     `json:"size,omitempty"`
	ThumbnailPath *string    `json:"thumbnail_path,omitempty"`
	BoardID       *uuid.UUID `json:"board_id,omitempty"`
	SubBoardID    *uuid.UUID `json:"sub_board_id,omitempty"`
	ParentAssetID *uuid.UUID `json:"parent_asset_id,omitempty"`
	IsFavorite    bool       `json:"is_favorite"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Archived reports whether the asset has been soft-deleted.
func (a StorageAsset) Archived() bool {
	return a.ArchivedAt != nil
}
