package model

import "time"

// ResourceID uniquely identifies a resource
type ResourceID string

// ResourceType is the kind of content a resource points at
type ResourceType string

const (
	ResourceVideo   ResourceType = "video"
	ResourcePDF     ResourceType = "pdf"
	ResourceYouTube ResourceType = "youtube"
)

// ValidResourceType reports whether t is a known resource type
func ValidResourceType(t ResourceType) bool {
	return t == ResourceVideo || t == ResourcePDF || t == ResourceYouTube
}

// Resource is an item attached to a playlist, owned by the playlist's
// author. The client core only reads and forwards resources; the
// playlist's ResourcesCount is reconciled by the backend.
type Resource struct {
	ID          ResourceID   `json:"id"`
	PlaylistID  PlaylistID   `json:"playlist_id"`
	Type        ResourceType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url"`
	UploadedBy  string       `json:"uploaded_by"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ResourceDraft is the caller-supplied part of a new resource.
// Exactly one of YouTubeURL or File is set, depending on Type.
type ResourceDraft struct {
	Type        ResourceType
	Title       string
	Description string
	UploadedBy  string
	YouTubeURL  string
	File        ThumbnailUpload
}
