package playlist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tekmiz/tekmiz-go/internal/backend"
	"github.com/tekmiz/tekmiz-go/internal/dependencies/mocks"
	"github.com/tekmiz/tekmiz-go/internal/model"
	"github.com/tekmiz/tekmiz-go/internal/session"
	"github.com/tekmiz/tekmiz-go/internal/testutil"
)

// stubBackend scripts the playlist collaborator responses
type stubBackend struct {
	listResult   []*model.Playlist
	listErr      error
	createResult *model.Playlist
	createErr    error
	createDraft  model.PlaylistDraft
	updateResult *model.Playlist
	updateErr    error
	deleteErr    error
	viewResult   *model.Playlist
	viewErr      error

	resources       []*model.Resource
	resourcesErr    error
	addResult       *model.Resource
	addErr          error
	addDraft        model.ResourceDraft
	deleteResErr    error
	deletedResource model.ResourceID
}

func (b *stubBackend) List(ctx context.Context, filter backend.ListFilter) ([]*model.Playlist, error) {
	return b.listResult, b.listErr
}

func (b *stubBackend) Get(ctx context.Context, id model.PlaylistID) (*model.Playlist, error) {
	for _, p := range b.listResult {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, model.ErrPlaylistNotFound
}

func (b *stubBackend) Create(ctx context.Context, draft model.PlaylistDraft) (*model.Playlist, error) {
	b.createDraft = draft
	return b.createResult, b.createErr
}

func (b *stubBackend) Update(ctx context.Context, id model.PlaylistID, update model.PlaylistUpdate) (*model.Playlist, error) {
	return b.updateResult, b.updateErr
}

func (b *stubBackend) Delete(ctx context.Context, id model.PlaylistID) error {
	return b.deleteErr
}

func (b *stubBackend) RecordView(ctx context.Context, id model.PlaylistID) (*model.Playlist, error) {
	return b.viewResult, b.viewErr
}

func (b *stubBackend) Resources(ctx context.Context, id model.PlaylistID) ([]*model.Resource, error) {
	return b.resources, b.resourcesErr
}

func (b *stubBackend) AddResource(ctx context.Context, id model.PlaylistID, draft model.ResourceDraft) (*model.Resource, error) {
	b.addDraft = draft
	return b.addResult, b.addErr
}

func (b *stubBackend) DeleteResource(ctx context.Context, id model.ResourceID) error {
	b.deletedResource = id
	return b.deleteResErr
}

type StoreSuite struct {
	suite.Suite
	sessions *session.Store
	backend  *stubBackend
	clock    *mocks.MockClock
	store    *Store
	ctx      context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.sessions = session.NewStore(testutil.NopLogger())
	s.backend = &stubBackend{}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.store = NewStore(s.backend, s.sessions, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *StoreSuite) signIn() *model.Identity {
	identity := &model.Identity{
		ID:          "user_1",
		Email:       "ada@example.com",
		DisplayName: "Ada",
		Roles:       model.RoleSet{model.RoleStudent, model.RoleTeacher},
	}
	s.sessions.SetIdentity(identity)
	return identity
}

func playlistFixture(id, title, author, authorID string, category model.Category) *model.Playlist {
	return &model.Playlist{
		ID:       model.PlaylistID(id),
		Title:    title,
		Category: category,
		Author:   author,
		AuthorID: authorID,
	}
}

func (s *StoreSuite) seed(playlists ...*model.Playlist) {
	s.backend.listResult = playlists
	s.Require().NoError(s.store.FetchAll(s.ctx))
}

// FetchAll

func (s *StoreSuite) TestFetchAllReplacesCollection() {
	s.seed(
		playlistFixture("pl_1", "Go Basics", "Ada", "user_1", model.CategoryBackend),
		playlistFixture("pl_2", "React Hooks", "Bob", "user_2", model.CategoryFrontend),
	)

	all := s.store.All()
	s.Require().Len(all, 2)
	s.Equal(model.PlaylistID("pl_1"), all[0].ID)
	s.Equal(model.PlaylistID("pl_2"), all[1].ID)
	s.False(s.store.Loading())
}

func (s *StoreSuite) TestFetchAllFailureLeavesPriorCollection() {
	s.seed(playlistFixture("pl_1", "Go Basics", "Ada", "user_1", model.CategoryBackend))

	s.backend.listErr = model.ErrNetwork
	err := s.store.FetchAll(s.ctx)
	s.Require().Error(err)
	s.ErrorIs(err, model.ErrNetwork)

	all := s.store.All()
	s.Require().Len(all, 1)
	s.Equal(model.PlaylistID("pl_1"), all[0].ID)
	s.False(s.store.Loading())
}

// Create

func (s *StoreSuite) TestCreateStampsAuthorFromSession() {
	s.signIn()
	s.backend.createResult = &model.Playlist{
		ID:       "pl_new",
		Title:    "Go Basics",
		Category: model.CategoryBackend,
		Author:   "Ada",
		AuthorID: "user_1",
	}

	created, err := s.store.Create(s.ctx, model.PlaylistDraft{
		Title:    "Go Basics",
		Category: model.CategoryBackend,
		// Caller-supplied author fields must be overwritten
		Author:   "Mallory",
		AuthorID: "user_666",
	})
	s.Require().NoError(err)

	s.Equal("Ada", s.backend.createDraft.Author)
	s.Equal("user_1", s.backend.createDraft.AuthorID)
	s.Equal(0, created.Views)
	s.Equal(0, created.Likes)
	s.Equal(0, created.ResourcesCount)
}

func (s *StoreSuite) TestCreateRequiresIdentity() {
	_, err := s.store.Create(s.ctx, model.PlaylistDraft{
		Title:    "Go Basics",
		Category: model.CategoryBackend,
	})
	s.ErrorIs(err, model.ErrNotAuthenticated)
	s.Empty(s.store.All())
}

func (s *StoreSuite) TestCreateValidation() {
	s.signIn()

	_, err := s.store.Create(s.ctx, model.PlaylistDraft{Title: "   ", Category: model.CategoryBackend})
	s.ErrorIs(err, model.ErrValidation)

	_, err = s.store.Create(s.ctx, model.PlaylistDraft{Title: "Go Basics", Category: "Underwater Basket Weaving"})
	s.ErrorIs(err, model.ErrValidation)

	s.Empty(s.store.All())
}

func (s *StoreSuite) TestCreateCommitsInPlace() {
	s.signIn()
	s.seed(playlistFixture("pl_1", "Existing", "Bob", "user_2", model.CategoryFrontend))
	s.backend.createResult = playlistFixture("pl_new", "Go Basics", "Ada", "user_1", model.CategoryBackend)

	created, err := s.store.Create(s.ctx, model.PlaylistDraft{
		Title:    "Go Basics",
		Category: model.CategoryBackend,
	})
	s.Require().NoError(err)

	all := s.store.All()
	s.Require().Len(all, 2)
	// The confirmed record takes the placeholder's position at the front
	s.Equal(created.ID, all[0].ID)
	s.False(all[0].Pending)
	s.False(strings.HasPrefix(string(all[0].ID), "tmp_"))
	s.Equal(model.PlaylistID("pl_1"), all[1].ID)
}

func (s *StoreSuite) TestCreateRollbackRestoresCollection() {
	s.signIn()
	s.seed(
		playlistFixture("pl_1", "First", "Bob", "user_2", model.CategoryFrontend),
		playlistFixture("pl_2", "Second", "Bob", "user_2", model.CategoryFrontend),
	)
	s.backend.createErr = model.ErrNetwork

	_, err := s.store.Create(s.ctx, model.PlaylistDraft{
		Title:    "Doomed",
		Category: model.CategoryBackend,
	})
	s.Require().Error(err)

	all := s.store.All()
	s.Require().Len(all, 2)
	s.Equal(model.PlaylistID("pl_1"), all[0].ID)
	s.Equal(model.PlaylistID("pl_2"), all[1].ID)
	for _, p := range all {
		s.False(p.Pending)
	}
}

// Update

func (s *StoreSuite) TestUpdateReplacesLocalRecord() {
	s.seed(playlistFixture("pl_1", "Old Title", "Ada", "user_1", model.CategoryBackend))
	updated := playlistFixture("pl_1", "New Title", "Ada", "user_1", model.CategoryBackend)
	s.backend.updateResult = updated

	title := "New Title"
	result, err := s.store.Update(s.ctx, "pl_1", model.PlaylistUpdate{Title: &title})
	s.Require().NoError(err)
	s.Equal("New Title", result.Title)

	got, ok := s.store.ByID("pl_1")
	s.Require().True(ok)
	s.Equal("New Title", got.Title)
}

func (s *StoreSuite) TestUpdateFailureLeavesLocalRecord() {
	s.seed(playlistFixture("pl_1", "Old Title", "Ada", "user_1", model.CategoryBackend))
	s.backend.updateErr = model.ErrPlaylistNotFound

	title := "New Title"
	_, err := s.store.Update(s.ctx, "pl_1", model.PlaylistUpdate{Title: &title})
	s.ErrorIs(err, model.ErrPlaylistNotFound)

	got, ok := s.store.ByID("pl_1")
	s.Require().True(ok)
	s.Equal("Old Title", got.Title)
}

// Remove

func (s *StoreSuite) TestRemoveDeletesLocally() {
	s.seed(
		playlistFixture("pl_1", "First", "Ada", "user_1", model.CategoryBackend),
		playlistFixture("pl_2", "Second", "Ada", "user_1", model.CategoryBackend),
	)

	s.Require().NoError(s.store.Remove(s.ctx, "pl_1"))

	all := s.store.All()
	s.Require().Len(all, 1)
	s.Equal(model.PlaylistID("pl_2"), all[0].ID)
}

func (s *StoreSuite) TestRemoveFailureReinsertsAtOriginalIndex() {
	s.seed(
		playlistFixture("pl_1", "First", "Ada", "user_1", model.CategoryBackend),
		playlistFixture("pl_2", "Second", "Ada", "user_1", model.CategoryBackend),
		playlistFixture("pl_3", "Third", "Ada", "user_1", model.CategoryBackend),
	)
	s.backend.deleteErr = model.ErrNetwork

	err := s.store.Remove(s.ctx, "pl_2")
	s.Require().Error(err)

	all := s.store.All()
	s.Require().Len(all, 3)
	s.Equal(model.PlaylistID("pl_1"), all[0].ID)
	s.Equal(model.PlaylistID("pl_2"), all[1].ID)
	s.Equal(model.PlaylistID("pl_3"), all[2].ID)
}

func (s *StoreSuite) TestRemoveUnknownIDStillCallsBackend() {
	s.seed(playlistFixture("pl_1", "First", "Ada", "user_1", model.CategoryBackend))
	s.backend.deleteErr = model.ErrPlaylistNotFound

	err := s.store.Remove(s.ctx, "pl_missing")
	s.ErrorIs(err, model.ErrPlaylistNotFound)
	s.Len(s.store.All(), 1)
}

// RecordView

func (s *StoreSuite) TestRecordViewReflectsCounters() {
	p := playlistFixture("pl_1", "First", "Ada", "user_1", model.CategoryBackend)
	s.seed(p)
	viewed := p.Clone()
	viewed.Views = 1
	s.backend.viewResult = viewed

	result, err := s.store.RecordView(s.ctx, "pl_1")
	s.Require().NoError(err)
	s.Equal(1, result.Views)

	got, _ := s.store.ByID("pl_1")
	s.Equal(1, got.Views)
}

// Search and local queries

func (s *StoreSuite) TestSearchMatchesTitleCategoryAuthor() {
	s.seed(
		playlistFixture("pl_1", "Intro to Go", "Ada", "user_1", model.CategoryBackend),
		playlistFixture("pl_2", "React Hooks", "Bob", "user_2", model.CategoryFrontend),
		playlistFixture("pl_3", "Neural Nets", "Grace", "user_3", model.CategoryAIML),
	)

	s.Len(s.store.Search("go"), 1)
	s.Len(s.store.Search("FRONTEND"), 1)
	s.Len(s.store.Search("grace"), 1)
	s.Empty(s.store.Search("cobol"))
}

func (s *StoreSuite) TestSearchBlankReturnsFullCollection() {
	s.seed(
		playlistFixture("pl_1", "First", "Ada", "user_1", model.CategoryBackend),
		playlistFixture("pl_2", "Second", "Bob", "user_2", model.CategoryFrontend),
	)

	for _, query := range []string{"", "   ", "\t"} {
		out := s.store.Search(query)
		s.Require().Len(out, 2)
		s.Equal(model.PlaylistID("pl_1"), out[0].ID)
		s.Equal(model.PlaylistID("pl_2"), out[1].ID)
	}
}

func (s *StoreSuite) TestSearchIsPure() {
	s.seed(playlistFixture("pl_1", "First", "Ada", "user_1", model.CategoryBackend))

	s.store.Search("nothing matches this")
	s.Len(s.store.All(), 1)
}

func (s *StoreSuite) TestByAuthorAndByCategory() {
	s.seed(
		playlistFixture("pl_1", "First", "Ada", "user_1", model.CategoryBackend),
		playlistFixture("pl_2", "Second", "Bob", "user_2", model.CategoryFrontend),
		playlistFixture("pl_3", "Third", "Ada", "user_1", model.CategoryFrontend),
	)

	mine := s.store.ByAuthor("user_1")
	s.Require().Len(mine, 2)
	s.Equal(model.PlaylistID("pl_1"), mine[0].ID)

	frontend := s.store.ByCategory(model.CategoryFrontend)
	s.Require().Len(frontend, 2)
	s.Equal(model.PlaylistID("pl_2"), frontend[0].ID)
}

func (s *StoreSuite) TestByIDMiss() {
	_, ok := s.store.ByID("pl_missing")
	s.False(ok)
}

// Resources

func (s *StoreSuite) TestAddResourceStampsUploader() {
	s.signIn()
	s.backend.addResult = &model.Resource{ID: "res_1", PlaylistID: "pl_1", Type: model.ResourceYouTube}

	_, err := s.store.AddResource(s.ctx, "pl_1", model.ResourceDraft{
		Type:       model.ResourceYouTube,
		Title:      "Go Tour",
		YouTubeURL: "https://youtube.com/watch?v=abc",
		UploadedBy: "user_666",
	})
	s.Require().NoError(err)
	s.Equal("user_1", s.backend.addDraft.UploadedBy)
}

func (s *StoreSuite) TestAddResourceRequiresIdentity() {
	_, err := s.store.AddResource(s.ctx, "pl_1", model.ResourceDraft{Type: model.ResourceYouTube})
	s.ErrorIs(err, model.ErrNotAuthenticated)
}

func (s *StoreSuite) TestAddResourceRejectsUnknownType() {
	s.signIn()
	_, err := s.store.AddResource(s.ctx, "pl_1", model.ResourceDraft{Type: "hologram"})
	s.ErrorIs(err, model.ErrValidation)
}

func (s *StoreSuite) TestRemoveResource() {
	s.Require().NoError(s.store.RemoveResource(s.ctx, "res_1"))
	s.Equal(model.ResourceID("res_1"), s.backend.deletedResource)

	s.backend.deleteResErr = errors.New("boom")
	s.Error(s.store.RemoveResource(s.ctx, "res_2"))
}
