// Package playlist maintains the in-memory reflection of server-side
// playlists and mediates all mutations through the backend
// collaborator. Creates and removes are optimistic: the local
// collection changes immediately and is reconciled or rolled back when
// the backend responds.
package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tekmiz/tekmiz-go/internal/backend"
	"github.com/tekmiz/tekmiz-go/internal/dependencies/clock"
	"github.com/tekmiz/tekmiz-go/internal/model"
	"github.com/tekmiz/tekmiz-go/internal/session"
)

// Store is the playlist collection store. One writer path exists for
// its state: its own methods. Mutations are applied as a single
// synchronous step once the initiating backend call resolves, so two
// in-flight calls never interleave mid-update; same-record races are
// last-resolved-wins.
type Store struct {
	backend  backend.Playlists
	sessions *session.Store
	clock    clock.Clock
	logger   *slog.Logger

	mu        sync.Mutex
	playlists []*model.Playlist
	loading   bool
}

// NewStore creates a playlist collection store
func NewStore(b backend.Playlists, sessions *session.Store, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		backend:  b,
		sessions: sessions,
		clock:    clk,
		logger:   logger.With(slog.String("component", "playlists")),
	}
}

// Loading reports whether a FetchAll call is in flight
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// All returns the current collection, server order preserved
// (newest first)
func (s *Store) All() []*model.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// FetchAll replaces the entire local collection with the backend's.
// On failure the prior collection is left untouched and the error is
// surfaced to the caller.
func (s *Store) FetchAll(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	fetched, err := s.backend.List(ctx, backend.ListFilter{})
	if err != nil {
		return fmt.Errorf("fetch playlists: %w", err)
	}

	s.mu.Lock()
	s.playlists = fetched
	s.mu.Unlock()

	s.logger.Debug("playlists fetched", slog.Int("count", len(fetched)))
	return nil
}

// Create stores a new playlist. The author fields are stamped from the
// current session identity; the caller is expected to have gated this
// behind the teacher requirement already.
//
// The insert is optimistic: a pending placeholder with a temporary id
// is prepended immediately, then either committed in place with the
// authoritative record or rolled back. The collection never retains a
// placeholder after either outcome.
func (s *Store) Create(ctx context.Context, draft model.PlaylistDraft) (*model.Playlist, error) {
	identity := s.sessions.Get().Identity
	if identity == nil {
		return nil, model.ErrNotAuthenticated
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, model.ValidationError("title must not be empty")
	}
	if !model.ValidCategory(draft.Category) {
		return nil, model.ValidationError("unknown category")
	}

	draft.Author = identity.DisplayName
	draft.AuthorID = identity.ID

	tempID := model.PlaylistID("tmp_" + uuid.NewString())
	now := s.clock.Now()
	placeholder := &model.Playlist{
		ID:          tempID,
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Author:      draft.Author,
		AuthorID:    draft.AuthorID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Pending:     true,
	}

	s.mu.Lock()
	s.playlists = append([]*model.Playlist{placeholder}, s.playlists...)
	s.mu.Unlock()

	created, err := s.backend.Create(ctx, draft)
	if err != nil {
		s.rollbackCreate(tempID)
		return nil, fmt.Errorf("create playlist: %w", err)
	}

	s.commitCreate(tempID, created)
	s.logger.Info("playlist created", slog.String("id", string(created.ID)))
	return created, nil
}

// commitCreate swaps the placeholder for the authoritative record,
// keeping its position
func (s *Store) commitCreate(tempID model.PlaylistID, created *model.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.playlists {
		if p.ID == tempID {
			s.playlists[i] = created
			return
		}
	}
	// Placeholder gone (e.g. a FetchAll replaced the collection while
	// the create was in flight); prepend the confirmed record instead
	s.playlists = append([]*model.Playlist{created}, s.playlists...)
}

// rollbackCreate retracts the placeholder
func (s *Store) rollbackCreate(tempID model.PlaylistID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.playlists {
		if p.ID == tempID {
			s.playlists = append(s.playlists[:i], s.playlists[i+1:]...)
			return
		}
	}
}

// Update sends a partial update and replaces the matching local
// record with the backend's result. Only fields present in the update
// change; ownership is not expressible in a PlaylistUpdate.
func (s *Store) Update(ctx context.Context, id model.PlaylistID, update model.PlaylistUpdate) (*model.Playlist, error) {
	updated, err := s.backend.Update(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update playlist: %w", err)
	}

	s.replace(id, updated)
	s.logger.Info("playlist updated", slog.String("id", string(id)))
	return updated, nil
}

// Remove deletes a playlist. The removal is optimistic: the record
// leaves the local collection immediately; if the backend delete
// fails, it is reinserted at its original index.
func (s *Store) Remove(ctx context.Context, id model.PlaylistID) error {
	s.mu.Lock()
	index := -1
	var removed *model.Playlist
	for i, p := range s.playlists {
		if p.ID == id {
			index = i
			removed = p
			break
		}
	}
	if index >= 0 {
		s.playlists = append(s.playlists[:index], s.playlists[index+1:]...)
	}
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, id); err != nil {
		if removed != nil {
			s.reinsert(removed, index)
		}
		return fmt.Errorf("delete playlist: %w", err)
	}

	s.logger.Info("playlist deleted", slog.String("id", string(id)))
	return nil
}

// RecordView reports a view to the backend and reflects the
// authoritative counters locally
func (s *Store) RecordView(ctx context.Context, id model.PlaylistID) (*model.Playlist, error) {
	updated, err := s.backend.RecordView(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("record view: %w", err)
	}
	s.replace(id, updated)
	return updated, nil
}

// Search filters the current collection by a case-insensitive
// substring match over title, category, and author. A blank query
// returns the full collection, order preserved. Pure: no state
// change, no backend call.
func (s *Store) Search(query string) []*model.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return s.snapshot()
	}

	var out []*model.Playlist
	for _, p := range s.playlists {
		if strings.Contains(strings.ToLower(p.Title), query) ||
			strings.Contains(strings.ToLower(string(p.Category)), query) ||
			strings.Contains(strings.ToLower(p.Author), query) {
			out = append(out, p)
		}
	}
	return out
}

// ByAuthor returns the playlists owned by the given identity id
func (s *Store) ByAuthor(authorID string) []*model.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Playlist
	for _, p := range s.playlists {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out
}

// ByCategory returns the playlists in the given category
func (s *Store) ByCategory(category model.Category) []*model.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Playlist
	for _, p := range s.playlists {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// ByID looks up a playlist in the local collection
func (s *Store) ByID(id model.PlaylistID) (*model.Playlist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.playlists {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Resources lists a playlist's attached resources. Thin pass-through;
// resources are not reflected in local state.
func (s *Store) Resources(ctx context.Context, id model.PlaylistID) ([]*model.Resource, error) {
	resources, err := s.backend.Resources(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// AddResource attaches a resource to a playlist, stamping the uploader
// from the current session identity. The playlist's ResourcesCount is
// reconciled by the backend, not here.
func (s *Store) AddResource(ctx context.Context, id model.PlaylistID, draft model.ResourceDraft) (*model.Resource, error) {
	identity := s.sessions.Get().Identity
	if identity == nil {
		return nil, model.ErrNotAuthenticated
	}
	if !model.ValidResourceType(draft.Type) {
		return nil, model.ValidationError("unknown resource type")
	}
	draft.UploadedBy = identity.ID

	resource, err := s.backend.AddResource(ctx, id, draft)
	if err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return resource, nil
}

// RemoveResource detaches a resource
func (s *Store) RemoveResource(ctx context.Context, id model.ResourceID) error {
	if err := s.backend.DeleteResource(ctx, id); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// replace swaps the record with the given id, if present.
// A record that is no longer in the collection is ignored
// (last-resolved-wins, stale result discarded).
func (s *Store) replace(id model.PlaylistID, updated *model.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.playlists {
		if p.ID == id {
			s.playlists[i] = updated
			return
		}
	}
}

func (s *Store) reinsert(p *model.Playlist, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index > len(s.playlists) {
		index = len(s.playlists)
	}
	s.playlists = append(s.playlists, nil)
	copy(s.playlists[index+1:], s.playlists[index:])
	s.playlists[index] = p
}

// snapshot copies the slice header so callers cannot reorder the
// store's view. Caller must hold s.mu.
func (s *Store) snapshot() []*model.Playlist {
	out := make([]*model.Playlist, len(s.playlists))
	copy(out, s.playlists)
	return out
}
