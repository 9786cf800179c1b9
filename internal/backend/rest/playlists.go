package rest

import (
	"context"
	"net/url"

	"github.com/tekmiz/tekmiz-go/internal/backend"
	"github.com/tekmiz/tekmiz-go/internal/model"
)

// Playlists is the playlist collaborator over the remote API
type Playlists struct {
	client *Client
}

// NewPlaylists creates a REST playlist backend on the shared client
func NewPlaylists(client *Client) *Playlists {
	return &Playlists{client: client}
}

// Ensure Playlists implements the collaborator contract
var _ backend.Playlists = (*Playlists)(nil)

type playlistResponse struct {
	Playlist *model.Playlist `json:"playlist"`
}

type playlistsResponse struct {
	Playlists []*model.Playlist `json:"playlists"`
}

type resourceResponse struct {
	Resource *model.Resource `json:"resource"`
}

type resourcesResponse struct {
	Resources []*model.Resource `json:"resources"`
}

func (p *Playlists) List(ctx context.Context, filter backend.ListFilter) ([]*model.Playlist, error) {
	params := url.Values{}
	if filter.Category != "" {
		params.Set("category", string(filter.Category))
	}
	if filter.AuthorID != "" {
		params.Set("authorId", filter.AuthorID)
	}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}

	path := "/playlists"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp playlistsResponse
	if err := p.client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Playlists, nil
}

func (p *Playlists) Get(ctx context.Context, id model.PlaylistID) (*model.Playlist, error) {
	var resp playlistResponse
	if err := p.client.Get(ctx, "/playlists/"+url.PathEscape(string(id)), &resp); err != nil {
		return nil, err
	}
	return resp.Playlist, nil
}

// Create sends the draft as multipart form data so the thumbnail file
// rides along with the text fields
func (p *Playlists) Create(ctx context.Context, draft model.PlaylistDraft) (*model.Playlist, error) {
	fields := map[string]string{
		"title":       draft.Title,
		"description": draft.Description,
		"category":    string(draft.Category),
		"author":      draft.Author,
		"authorId":    draft.AuthorID,
	}
	var files []file
	if draft.Thumbnail.Filename != "" {
		files = append(files, file{
			field:    "thumbnail",
			filename: draft.Thumbnail.Filename,
			data:     draft.Thumbnail.Data,
		})
	}

	var resp playlistResponse
	if err := p.client.PostMultipart(ctx, "/playlists", fields, files, &resp); err != nil {
		return nil, err
	}
	return resp.Playlist, nil
}

func (p *Playlists) Update(ctx context.Context, id model.PlaylistID, update model.PlaylistUpdate) (*model.Playlist, error) {
	// Partial JSON body: only the set fields are transmitted
	body := map[string]any{}
	if update.Title != nil {
		body["title"] = *update.Title
	}
	if update.Description != nil {
		body["description"] = *update.Description
	}
	if update.Category != nil {
		body["category"] = *update.Category
	}
	if update.ThumbnailRef != nil {
		body["thumbnail_ref"] = *update.ThumbnailRef
	}
	if update.Trending != nil {
		body["trending"] = *update.Trending
	}

	var resp playlistResponse
	if err := p.client.Put(ctx, "/playlists/"+url.PathEscape(string(id)), body, &resp); err != nil {
		return nil, err
	}
	return resp.Playlist, nil
}

func (p *Playlists) Delete(ctx context.Context, id model.PlaylistID) error {
	return p.client.Delete(ctx, "/playlists/"+url.PathEscape(string(id)))
}

func (p *Playlists) RecordView(ctx context.Context, id model.PlaylistID) (*model.Playlist, error) {
	var resp playlistResponse
	if err := p.client.Post(ctx, "/playlists/"+url.PathEscape(string(id))+"/view", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Playlist, nil
}

func (p *Playlists) Resources(ctx context.Context, id model.PlaylistID) ([]*model.Resource, error) {
	var resp resourcesResponse
	if err := p.client.Get(ctx, "/resources/playlist/"+url.PathEscape(string(id)), &resp); err != nil {
		return nil, err
	}
	return resp.Resources, nil
}

func (p *Playlists) AddResource(ctx context.Context, id model.PlaylistID, draft model.ResourceDraft) (*model.Resource, error) {
	fields := map[string]string{
		"type":        string(draft.Type),
		"title":       draft.Title,
		"description": draft.Description,
		"uploadedBy":  draft.UploadedBy,
	}
	var files []file
	if draft.Type == model.ResourceYouTube {
		fields["youtubeUrl"] = draft.YouTubeURL
	} else if draft.File.Filename != "" {
		files = append(files, file{
			field:    "file",
			filename: draft.File.Filename,
			data:     draft.File.Data,
		})
	}

	var resp resourceResponse
	if err := p.client.PostMultipart(ctx, "/resources/playlist/"+url.PathEscape(string(id)), fields, files, &resp); err != nil {
		return nil, err
	}
	return resp.Resource, nil
}

func (p *Playlists) DeleteResource(ctx context.Context, id model.ResourceID) error {
	return p.client.Delete(ctx, "/resources/"+url.PathEscape(string(id)))
}
