package domain

import (
	"time"

	"github.com/google/uuid"
)

// UTMLink is a URL annotated with campaign-tracking parameters, optionally
// fronted by a shortened redirect URL.
type UTMLink struct {
	ID           uuid.UUID  `json:"id"`
	WorkspaceID  *uuid.UUID `json:"workspace_id,omitempty"`
	FolderID     *uuid.UUID `json:"folder_id,omitempty"`
	Name         string     `json:"name"`
	OriginalURL  string     `json:"original_url"`
	UTMURL       string     `json:"utm_url"`
	ShortenedURL *string    `json:"shortened_url,omitempty"`
	CampaignName string     `json:"campaign_name,omitempty"`
	Source       string     `json:"source,omitempty"`
	Medium       string     `json:"medium,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// CopyURL returns the URL a copy action should place on the clipboard:
// the shortened URL when one exists, otherwise the full UTM URL.
func (l UTMLink) CopyURL() string {
	if l.ShortenedURL != nil && *l.ShortenedURL != "" {
		return *l.ShortenedURL
	}
	return l.UTMURL
}

// UTMFolder groups tracking links.
type UTMFolder struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID *uuid.UUID `json:"workspace_id,omitempty"`
	Name        string     `json:"name"`
	Color       *string    `json:"color,omitempty"`
}
