// Package backend defines the contracts for the external collaborators
// the client core consumes: the auth/session service and the playlist
// REST service. The core never talks to a transport directly; it goes
// through these interfaces so the REST implementation and the local
// persisted fallback are interchangeable.
package backend

import (
	"context"

	"github.com/tekmiz/tekmiz-go/internal/model"
)

// Auth is the auth/session collaborator
type Auth interface {
	// RegisterAccount creates a new account with roles = {student}
	RegisterAccount(ctx context.Context, displayName, email, password string) (*model.Identity, error)

	// Authenticate verifies credentials and returns the full identity,
	// including persisted roles and teacher profile
	Authenticate(ctx context.Context, email, password string) (*model.Identity, error)

	// EndSession invalidates the current session server-side. Local
	// sign-out proceeds even if this fails.
	EndSession(ctx context.Context) error

	// CurrentSession restores the identity for a persisted session.
	// Returns (nil, nil) when no session exists. Called exactly once,
	// at startup.
	CurrentSession(ctx context.Context) (*model.Identity, error)

	// PersistRoleUpgrade stores the expanded role set and teacher
	// profile and returns the merged identity
	PersistRoleUpgrade(ctx context.Context, id string, roles model.RoleSet, profile model.TeacherProfile) (*model.Identity, error)
}

// ListFilter narrows a playlist listing server-side
type ListFilter struct {
	Category model.Category
	AuthorID string
	Search   string
}

// Playlists is the playlist REST collaborator
type Playlists interface {
	// List returns playlists newest-first, optionally filtered
	List(ctx context.Context, filter ListFilter) ([]*model.Playlist, error)

	// Get returns a single playlist by id
	Get(ctx context.Context, id model.PlaylistID) (*model.Playlist, error)

	// Create stores a new playlist (multipart, thumbnail included)
	// and returns the authoritative record
	Create(ctx context.Context, draft model.PlaylistDraft) (*model.Playlist, error)

	// Update applies a partial update and returns the updated record
	Update(ctx context.Context, id model.PlaylistID, update model.PlaylistUpdate) (*model.Playlist, error)

	// Delete removes a playlist by id
	Delete(ctx context.Context, id model.PlaylistID) error

	// RecordView increments the view counter and returns the updated record
	RecordView(ctx context.Context, id model.PlaylistID) (*model.Playlist, error)

	// Resources lists the resources attached to a playlist
	Resources(ctx context.Context, id model.PlaylistID) ([]*model.Resource, error)

	// AddResource attaches a resource to a playlist
	AddResource(ctx context.Context, id model.PlaylistID, draft model.ResourceDraft) (*model.Resource, error)

	// DeleteResource removes a resource by id
	DeleteResource(ctx context.Context, id model.ResourceID) error
}
