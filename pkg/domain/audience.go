package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audience is a target segment with its messaging structure underneath.
type Audience struct {
	ID                uuid.UUID  `json:"id"`
	WorkspaceID       uuid.UUID  `json:"workspace_id"`
	Name              string     `json:"name"`
	Notes             string     `json:"notes,omitempty"`
	Goal              string     `json:"goal,omitempty"`
	FunnelStage       string     `json:"funnel_stage,omitempty"`
	FunnelType        string     `json:"funnel_type,omitempty"`
	Platforms         []string   `json:"platforms,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	EstimatedReachMin *int64     `json:"estimated_reach_min,omitempty"`
	EstimatedReachMax *int64     `json:"estimated_reach_max,omitempty"`
	IsPublic          bool       `json:"is_public"`
	ShareToken        *string    `json:"share_token,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// PainPoint is a single audience frustration, ordered by SortOrder.
type PainPoint struct {
	ID          uuid.UUID `json:"id"`
	AudienceID  uuid.UUID `json:"audience_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sort_order"`
}

// ContentPillar is a messaging theme; its concrete messages are ContentBlocks.
type ContentPillar struct {
	ID          uuid.UUID `json:"id"`
	AudienceID  uuid.UUID `json:"audience_id"`
	Name        string    `json:"name"`
	CorePromise string    `json:"core_promise,omitempty"`
	SortOrder   int       `json:"sort_order"`
}

// ContentBlock is one message instance. A block may belong to a pillar
// (blocks without one are never shown nested) and may reference a parent
// block for derived variants.
type ContentBlock struct {
	ID              uuid.UUID  `json:"id"`
	AudienceID      uuid.UUID  `json:"audience_id"`
	ContentPillarID *uuid.UUID `json:"content_pillar_id,omitempty"`
	ParentBlockID   *uuid.UUID `json:"parent_block_id,omitempty"`
	BlockType       string     `json:"block_type,omitempty"`
	Messaging       string     `json:"messaging,omitempty"`
	Intent          string     `json:"intent,omitempty"`
	Objection       string     `json:"objection,omitempty"`
	Reframe         string     `json:"reframe,omitempty"`
	Position        int        `json:"position"`
}

// TargetingLayer is a per-platform targeting recipe with an optional
// machine-generated report payload.
type TargetingLayer struct {
	ID                uuid.UUID       `json:"id"`
	AudienceID        uuid.UUID       `json:"audience_id"`
	Name              string          `json:"name"`
	Platform          string          `json:"platform,omitempty"`
	AITargetingReport json.RawMessage `json:"ai_targeting_report,omitempty"`
	SortOrder         int             `json:"sort_order"`
}
