// Package mockapi is an in-process stand-in for the remote Tekmiz API,
// used by REST-backend and integration tests. It honors the same wire
// contract as the real service: JSON bodies, multipart playlist
// creation, bearer tokens, and the error envelope.
package mockapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tekmiz/tekmiz-go/internal/model"
)

type account struct {
	identity *model.Identity
	password string
}

// Server is the fake backend. Zero value is not usable; call New.
type Server struct {
	mu        sync.Mutex
	accounts  map[string]*account // by email
	sessions  map[string]string   // token -> email
	playlists []*model.Playlist   // newest first
	resources []*model.Resource

	// ForceStatus, when non-zero, makes every request fail with that
	// status. Lets tests exercise error paths like 429 or 500.
	ForceStatus int

	router http.Handler
}

// New creates a fake backend with empty state
func New() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/auth/session", s.handleSession).Methods(http.MethodGet)
	r.HandleFunc("/auth/users/{id}/roles", s.handleRoleUpgrade).Methods(http.MethodPut)

	r.HandleFunc("/playlists", s.handleListPlaylists).Methods(http.MethodGet)
	r.HandleFunc("/playlists", s.handleCreatePlaylist).Methods(http.MethodPost)
	r.HandleFunc("/playlists/{id}", s.handleGetPlaylist).Methods(http.MethodGet)
	r.HandleFunc("/playlists/{id}", s.handleUpdatePlaylist).Methods(http.MethodPut)
	r.HandleFunc("/playlists/{id}", s.handleDeletePlaylist).Methods(http.MethodDelete)
	r.HandleFunc("/playlists/{id}/view", s.handleRecordView).Methods(http.MethodPost)

	r.HandleFunc("/resources/playlist/{id}", s.handleListResources).Methods(http.MethodGet)
	r.HandleFunc("/resources/playlist/{id}", s.handleAddResource).Methods(http.MethodPost)
	r.HandleFunc("/resources/{id}", s.handleDeleteResource).Methods(http.MethodDelete)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	forced := s.ForceStatus
	s.mu.Unlock()
	if forced != 0 {
		writeError(w, forced, "FORCED", "forced failure")
		return
	}
	s.router.ServeHTTP(w, r)
}

// SeedAccount registers an account directly, bypassing the API
func (s *Server) SeedAccount(identity *model.Identity, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[identity.Email] = &account{identity: identity, password: password}
}

// SeedPlaylist inserts a playlist directly, newest first
func (s *Server) SeedPlaylist(p *model.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists = append([]*model.Playlist{p}, s.playlists...)
}

// SessionTokenFor mints a session for the given seeded account
func (s *Server) SessionTokenFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "sess_" + uuid.NewString()
	s.sessions[token] = email
	return token
}

// Auth handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeError(w, http.StatusConflict, "EMAIL_EXISTS", "email already registered")
		return
	}

	identity := &model.Identity{
		ID:          "user_" + uuid.NewString(),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Roles:       model.RoleSet{model.RoleStudent},
		CreatedAt:   time.Now().UTC(),
	}
	s.accounts[req.Email] = &account{identity: identity, password: req.Password}

	token := "sess_" + uuid.NewString()
	s.sessions[token] = req.Email
	writeJSON(w, http.StatusCreated, map[string]any{"identity": identity, "token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[req.Email]
	if !ok {
		writeError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "no account for this email")
		return
	}
	if acct.password != req.Password {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}

	token := "sess_" + uuid.NewString()
	s.sessions[token] = req.Email
	writeJSON(w, http.StatusOK, map[string]any{"identity": acct.identity, "token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.sessionAccount(r)
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid or expired session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"identity": acct.identity})
}

func (s *Server) handleRoleUpgrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Roles          []string             `json:"roles"`
		TeacherProfile model.TeacherProfile `json:"teacher_profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	for _, acct := range s.accounts {
		if acct.identity.ID == id {
			updated := acct.identity.Clone()
			updated.Roles = model.ParseRoles(req.Roles)
			profile := req.TeacherProfile
			updated.TeacherProfile = &profile
			acct.identity = updated
			writeJSON(w, http.StatusOK, map[string]any{"identity": updated})
			return
		}
	}
	writeError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "no such user")
}

// Playlist handlers

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := r.URL.Query()
	category := q.Get("category")
	authorID := q.Get("authorId")
	search := strings.ToLower(q.Get("search"))

	out := []*model.Playlist{}
	for _, p := range s.playlists {
		if category != "" && string(p.Category) != category {
			continue
		}
		if authorID != "" && p.AuthorID != authorID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(string(p.Category)), search) &&
			!strings.Contains(strings.ToLower(p.Author), search) {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": out})
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "expected multipart form")
		return
	}

	now := time.Now().UTC()
	p := &model.Playlist{
		ID:          model.PlaylistID("pl_" + uuid.NewString()),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    model.Category(r.FormValue("category")),
		Author:      r.FormValue("author"),
		AuthorID:    r.FormValue("authorId"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if f, header, err := r.FormFile("thumbnail"); err == nil {
		_, _ = io.Copy(io.Discard, f)
		_ = f.Close()
		p.ThumbnailRef = "https://cdn.tekmiz.test/thumbnails/" + header.Filename
	}

	s.mu.Lock()
	s.playlists = append([]*model.Playlist{p}, s.playlists...)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"playlist": p})
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.findPlaylist(mux.Vars(r)["id"]); p != nil {
		writeJSON(w, http.StatusOK, map[string]any{"playlist": p})
		return
	}
	writeError(w, http.StatusNotFound, "PLAYLIST_NOT_FOUND", "playlist not found")
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPlaylist(mux.Vars(r)["id"])
	if p == nil {
		writeError(w, http.StatusNotFound, "PLAYLIST_NOT_FOUND", "playlist not found")
		return
	}

	if v, ok := req["title"].(string); ok {
		p.Title = v
	}
	if v, ok := req["description"].(string); ok {
		p.Description = v
	}
	if v, ok := req["category"].(string); ok {
		p.Category = model.Category(v)
	}
	if v, ok := req["thumbnail_ref"].(string); ok {
		p.ThumbnailRef = v
	}
	if v, ok := req["trending"].(bool); ok {
		p.Trending = v
	}
	p.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, map[string]any{"playlist": p})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	for i, p := range s.playlists {
		if string(p.ID) == id {
			s.playlists = append(s.playlists[:i], s.playlists[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "PLAYLIST_NOT_FOUND", "playlist not found")
}

func (s *Server) handleRecordView(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPlaylist(mux.Vars(r)["id"])
	if p == nil {
		writeError(w, http.StatusNotFound, "PLAYLIST_NOT_FOUND", "playlist not found")
		return
	}
	p.Views++
	writeJSON(w, http.StatusOK, map[string]any{"playlist": p})
}

// Resource handlers

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	out := []*model.Resource{}
	for _, res := range s.resources {
		if string(res.PlaylistID) == id {
			out = append(out, res)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": out})
}

func (s *Server) handleAddResource(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "expected multipart form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	p := s.findPlaylist(id)
	if p == nil {
		writeError(w, http.StatusNotFound, "PLAYLIST_NOT_FOUND", "playlist not found")
		return
	}

	res := &model.Resource{
		ID:          model.ResourceID("res_" + uuid.NewString()),
		PlaylistID:  model.PlaylistID(id),
		Type:        model.ResourceType(r.FormValue("type")),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		UploadedBy:  r.FormValue("uploadedBy"),
		CreatedAt:   time.Now().UTC(),
	}
	if res.Type == model.ResourceYouTube {
		res.URL = r.FormValue("youtubeUrl")
	} else if f, header, err := r.FormFile("file"); err == nil {
		_, _ = io.Copy(io.Discard, f)
		_ = f.Close()
		res.URL = "https://cdn.tekmiz.test/resources/" + header.Filename
	}

	s.resources = append(s.resources, res)
	p.ResourcesCount++
	writeJSON(w, http.StatusCreated, map[string]any{"resource": res})
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	for i, res := range s.resources {
		if string(res.ID) == id {
			if p := s.findPlaylist(string(res.PlaylistID)); p != nil && p.ResourcesCount > 0 {
				p.ResourcesCount--
			}
			s.resources = append(s.resources[:i], s.resources[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "resource not found")
}

// Helpers

// findPlaylist looks up a playlist by id. Caller must hold s.mu.
func (s *Server) findPlaylist(id string) *model.Playlist {
	for _, p := range s.playlists {
		if string(p.ID) == id {
			return p
		}
	}
	return nil
}

// sessionAccount resolves the request's bearer token. Caller must hold s.mu.
func (s *Server) sessionAccount(r *http.Request) *account {
	email, ok := s.sessions[bearerToken(r)]
	if !ok {
		return nil
	}
	return s.accounts[email]
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// String describes the server state, handy in test failure output
func (s *Server) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("mockapi{accounts: %d, sessions: %d, playlists: %d, resources: %d}",
		len(s.accounts), len(s.sessions), len(s.playlists), len(s.resources))
}
