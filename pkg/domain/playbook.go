package domain

import (
	"time"

	"github.com/google/uuid"
)

// Playbook is a structured messaging document: pages own sections, sections
// own interchangeable variants.
type Playbook struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlaybookPage is one tabbed page of a playbook, ordered by OrderIndex.
type PlaybookPage struct {
	ID         uuid.UUID `json:"id"`
	PlaybookID uuid.UUID `json:"playbook_id"`
	Name       string    `json:"name"`
	OrderIndex int       `json:"order_index"`
}

// PlaybookSection is a named slot on a page. Inactive sections are never
// listed.
type PlaybookSection struct {
	ID         uuid.UUID `json:"id"`
	PageID     uuid.UUID `json:"page_id"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"is_active"`
	OrderIndex int       `json:"order_index"`
}

// SectionVariant is one interchangeable copy snippet for a section. At most
// one variant per section is flagged primary.
type SectionVariant struct {
	ID           uuid.UUID `json:"id"`
	SectionID    uuid.UUID `json:"section_id"`
	VariantLabel string    `json:"variant_label"`
	Content      string    `json:"content,omitempty"`
	IsPrimary    bool      `json:"is_primary"`
}
