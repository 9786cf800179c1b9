package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tekmiz/tekmiz-go/internal/backend"
	"github.com/tekmiz/tekmiz-go/internal/dependencies/clock"
	"github.com/tekmiz/tekmiz-go/internal/kv"
	"github.com/tekmiz/tekmiz-go/internal/model"
)

// Playlists is the local playlist collaborator. Records are stored as
// JSON values in the key-value store; listing is newest-first to match
// the server contract.
type Playlists struct {
	store  kv.Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewPlaylists creates a local playlist backend over the given store
func NewPlaylists(store kv.Store, clk clock.Clock, logger *slog.Logger) *Playlists {
	return &Playlists{
		store:  store,
		clock:  clk,
		logger: logger.With(slog.String("component", "local-playlists")),
	}
}

// Ensure Playlists implements the collaborator contract
var _ backend.Playlists = (*Playlists)(nil)

func (p *Playlists) List(ctx context.Context, filter backend.ListFilter) ([]*model.Playlist, error) {
	keys, err := p.store.Keys(ctx, "playlist:")
	if err != nil {
		return nil, err
	}

	var out []*model.Playlist
	for _, key := range keys {
		record, err := p.loadByKey(ctx, key)
		if err != nil {
			p.logger.Warn("skipping unreadable playlist record", slog.String("key", key))
			continue
		}
		if matchesFilter(record, filter) {
			out = append(out, record)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchesFilter(record *model.Playlist, filter backend.ListFilter) bool {
	if filter.Category != "" && record.Category != filter.Category {
		return false
	}
	if filter.AuthorID != "" && record.AuthorID != filter.AuthorID {
		return false
	}
	if q := strings.TrimSpace(strings.ToLower(filter.Search)); q != "" {
		if !strings.Contains(strings.ToLower(record.Title), q) &&
			!strings.Contains(strings.ToLower(string(record.Category)), q) &&
			!strings.Contains(strings.ToLower(record.Author), q) {
			return false
		}
	}
	return true
}

func (p *Playlists) Get(ctx context.Context, id model.PlaylistID) (*model.Playlist, error) {
	return p.load(ctx, id)
}

func (p *Playlists) Create(ctx context.Context, draft model.PlaylistDraft) (*model.Playlist, error) {
	now := p.clock.Now()
	record := &model.Playlist{
		ID:          model.PlaylistID("pl_" + uuid.NewString()),
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Author:      draft.Author,
		AuthorID:    draft.AuthorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if draft.Thumbnail.Filename != "" {
		record.ThumbnailRef = "local://" + draft.Thumbnail.Filename
	}

	if err := p.save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Playlists) Update(ctx context.Context, id model.PlaylistID, update model.PlaylistUpdate) (*model.Playlist, error) {
	record, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(record, p.clock.Now())
	if err := p.save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Playlists) Delete(ctx context.Context, id model.PlaylistID) error {
	if _, err := p.load(ctx, id); err != nil {
		return err
	}
	return p.store.Delete(ctx, playlistKey(string(id)))
}

func (p *Playlists) RecordView(ctx context.Context, id model.PlaylistID) (*model.Playlist, error) {
	record, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}

	record.Views++
	if err := p.save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Playlists) Resources(ctx context.Context, id model.PlaylistID) ([]*model.Resource, error) {
	keys, err := p.store.Keys(ctx, fmt.Sprintf("resource:%s:", id))
	if err != nil {
		return nil, err
	}

	var out []*model.Resource
	for _, key := range keys {
		data, err := p.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var resource model.Resource
		if err := json.Unmarshal([]byte(data), &resource); err != nil {
			continue
		}
		out = append(out, &resource)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (p *Playlists) AddResource(ctx context.Context, id model.PlaylistID, draft model.ResourceDraft) (*model.Resource, error) {
	record, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}

	resource := &model.Resource{
		ID:          model.ResourceID("res_" + uuid.NewString()),
		PlaylistID:  id,
		Type:        draft.Type,
		Title:       draft.Title,
		Description: draft.Description,
		UploadedBy:  draft.UploadedBy,
		CreatedAt:   p.clock.Now(),
	}
	if draft.Type == model.ResourceYouTube {
		resource.URL = draft.YouTubeURL
	} else {
		resource.URL = "local://" + draft.File.Filename
	}

	data, err := json.Marshal(resource)
	if err != nil {
		return nil, err
	}
	if err := p.store.Set(ctx, resourceKey(string(id), string(resource.ID)), string(data)); err != nil {
		return nil, err
	}

	// ResourcesCount is backend-owned; reconcile it here
	record.ResourcesCount++
	if err := p.save(ctx, record); err != nil {
		return nil, err
	}
	return resource, nil
}

func (p *Playlists) DeleteResource(ctx context.Context, id model.ResourceID) error {
	keys, err := p.store.Keys(ctx, "resource:")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if strings.HasSuffix(key, ":"+string(id)) {
			if err := p.store.Delete(ctx, key); err != nil {
				return err
			}
			// Best-effort counter reconciliation
			parts := strings.SplitN(key, ":", 3)
			if len(parts) == 3 {
				if record, err := p.load(ctx, model.PlaylistID(parts[1])); err == nil && record.ResourcesCount > 0 {
					record.ResourcesCount--
					_ = p.save(ctx, record)
				}
			}
			return nil
		}
	}
	return model.ErrResourceNotFound
}

func (p *Playlists) load(ctx context.Context, id model.PlaylistID) (*model.Playlist, error) {
	return p.loadByKey(ctx, playlistKey(string(id)))
}

func (p *Playlists) loadByKey(ctx context.Context, key string) (*model.Playlist, error) {
	data, err := p.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, model.ErrPlaylistNotFound
		}
		return nil, err
	}
	var record model.Playlist
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("corrupt playlist record: %w", err)
	}
	return &record, nil
}

func (p *Playlists) save(ctx context.Context, record *model.Playlist) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, playlistKey(string(record.ID)), string(data))
}
