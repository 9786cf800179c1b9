package model

import "time"

// PlaylistID uniquely identifies a playlist across the system
type PlaylistID string

// Category is one of the fixed content categories a playlist belongs to
type Category string

const (
	CategoryWebDev        Category = "Web Development"
	CategoryAIML          Category = "AI/ML"
	CategoryFullStack     Category = "Full Stack"
	CategoryAndroid       Category = "Android"
	CategoryDataScience   Category = "Data Science"
	CategoryCybersecurity Category = "Cybersecurity"
	CategoryBackend       Category = "Backend"
	CategoryFrontend      Category = "Frontend"
	CategoryDevOps        Category = "DevOps"
)

// Categories lists every valid category, in display order
func Categories() []Category {
	return []Category{
		CategoryWebDev,
		CategoryAIML,
		CategoryFullStack,
		CategoryAndroid,
		CategoryDataScience,
		CategoryCybersecurity,
		CategoryBackend,
		CategoryFrontend,
		CategoryDevOps,
	}
}

// ValidCategory reports whether c is one of the fixed categories
func ValidCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Playlist is an author-owned, categorized collection of learning resources.
// AuthorID is immutable after creation and always equals the creating
// identity's ID; ResourcesCount is a backend-derived counter the client
// never maintains itself.
type Playlist struct {
	ID             PlaylistID `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       Category   `json:"category"`
	Author         string     `json:"author"`
	AuthorID       string     `json:"author_id"`
	ThumbnailRef   string     `json:"thumbnail_ref,omitempty"`
	Views          int        `json:"views"`
	Likes          int        `json:"likes"`
	ResourcesCount int        `json:"resources_count"`
	Trending       bool       `json:"trending"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Pending marks a local optimistic placeholder that has not been
	// confirmed by the backend yet. Never serialized.
	Pending bool `json:"-"`
}

// Clone returns a copy of the playlist
func (p *Playlist) Clone() *Playlist {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

// PlaylistDraft is the caller-supplied part of a new playlist.
// Author and AuthorID are stamped by the collection store from the
// current session identity, never by the caller.
type PlaylistDraft struct {
	Title       string
	Description string
	Category    Category
	Author      string
	AuthorID    string
	Thumbnail   ThumbnailUpload
}

// ThumbnailUpload carries the raw thumbnail file for a multipart create
type ThumbnailUpload struct {
	Filename string
	Data     []byte
}

// PlaylistUpdate is a partial-field update. Only non-nil fields are
// applied. AuthorID is deliberately not expressible here: ownership
// can never change after creation.
type PlaylistUpdate struct {
	Title        *string
	Description  *string
	Category     *Category
	ThumbnailRef *string
	Trending     *bool
}

// Apply copies the set fields onto p and bumps UpdatedAt
func (u PlaylistUpdate) Apply(p *Playlist, now time.Time) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.ThumbnailRef != nil {
		p.ThumbnailRef = *u.ThumbnailRef
	}
	if u.Trending != nil {
		p.Trending = *u.Trending
	}
	p.UpdatedAt = now
}
