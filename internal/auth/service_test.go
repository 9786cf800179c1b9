package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tekmiz/tekmiz-go/internal/dependencies/mocks"
	"github.com/tekmiz/tekmiz-go/internal/model"
	"github.com/tekmiz/tekmiz-go/internal/session"
	"github.com/tekmiz/tekmiz-go/internal/testutil"
)

// stubBackend is a scriptable auth collaborator that counts calls so
// tests can assert that validation failures never reach the network
type stubBackend struct {
	calls int

	registerResult *model.Identity
	registerErr    error
	loginResult    *model.Identity
	loginErr       error
	sessionResult  *model.Identity
	sessionErr     error
	upgradeResult  *model.Identity
	upgradeErr     error
	endSessionErr  error
}

func (b *stubBackend) RegisterAccount(ctx context.Context, displayName, email, password string) (*model.Identity, error) {
	b.calls++
	return b.registerResult, b.registerErr
}

func (b *stubBackend) Authenticate(ctx context.Context, email, password string) (*model.Identity, error) {
	b.calls++
	return b.loginResult, b.loginErr
}

func (b *stubBackend) EndSession(ctx context.Context) error {
	b.calls++
	return b.endSessionErr
}

func (b *stubBackend) CurrentSession(ctx context.Context) (*model.Identity, error) {
	b.calls++
	return b.sessionResult, b.sessionErr
}

func (b *stubBackend) PersistRoleUpgrade(ctx context.Context, id string, roles model.RoleSet, profile model.TeacherProfile) (*model.Identity, error) {
	b.calls++
	return b.upgradeResult, b.upgradeErr
}

type ServiceSuite struct {
	suite.Suite
	sessions *session.Store
	backend  *stubBackend
	clock    *mocks.MockClock
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.sessions = session.NewStore(testutil.NopLogger())
	s.backend = &stubBackend{}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.sessions, s.backend, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func studentIdentity() *model.Identity {
	return &model.Identity{
		ID:          "user_1",
		Email:       "a@b.com",
		DisplayName: "Alice",
		Roles:       model.RoleSet{model.RoleStudent},
	}
}

// Init tests

func (s *ServiceSuite) TestInitRestoresIdentity() {
	s.backend.sessionResult = studentIdentity()

	s.service.Init(s.ctx)

	state := s.sessions.Get()
	s.False(state.Initializing)
	s.Require().NotNil(state.Identity)
	s.Equal("user_1", state.Identity.ID)
}

func (s *ServiceSuite) TestInitWithNoSession() {
	s.service.Init(s.ctx)

	state := s.sessions.Get()
	s.False(state.Initializing)
	s.Nil(state.Identity)
}

func (s *ServiceSuite) TestInitTreatsFailureAsSignedOut() {
	s.backend.sessionErr = model.ErrNetwork

	s.service.Init(s.ctx)

	state := s.sessions.Get()
	s.False(state.Initializing)
	s.Nil(state.Identity)
	s.Equal(1, s.backend.calls) // no retry
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	s.backend.registerResult = studentIdentity()

	identity, err := s.service.Register(s.ctx, "Alice", "a@b.com", "secret1")
	s.Require().NoError(err)

	s.Equal(model.RoleSet{model.RoleStudent}, identity.Roles)
	s.Nil(identity.TeacherProfile)
	s.Equal(identity, s.sessions.Get().Identity)
}

func (s *ServiceSuite) TestRegisterValidationSkipsNetwork() {
	cases := []struct {
		name, displayName, email, password string
	}{
		{"short display name", "A", "a@b.com", "secret1"},
		{"malformed email", "Alice", "not-an-email", "secret1"},
		{"short password", "Alice", "a@b.com", "12345"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Register(s.ctx, tc.displayName, tc.email, tc.password)
			s.ErrorIs(err, model.ErrValidation)
			s.Equal(0, s.backend.calls)
			s.Nil(s.sessions.Get().Identity)
		})
	}
}

func (s *ServiceSuite) TestRegisterBackendFailureLeavesSessionUnchanged() {
	s.backend.registerErr = model.NewAuthError(model.AuthCodeEmailExists, "email already registered")

	_, err := s.service.Register(s.ctx, "Alice", "a@b.com", "secret1")
	s.Require().Error(err)
	s.Equal(model.AuthCodeEmailExists, model.AuthCodeOf(err))
	s.Nil(s.sessions.Get().Identity)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	s.backend.loginResult = studentIdentity()

	identity, err := s.service.Login(s.ctx, "a@b.com", "secret1")
	s.Require().NoError(err)
	s.Equal("a@b.com", identity.Email)
	s.Equal(identity, s.sessions.Get().Identity)
}

func (s *ServiceSuite) TestLoginValidationSkipsNetwork() {
	_, err := s.service.Login(s.ctx, "nope", "secret1")
	s.ErrorIs(err, model.ErrValidation)

	_, err = s.service.Login(s.ctx, "a@b.com", "")
	s.ErrorIs(err, model.ErrValidation)

	s.Equal(0, s.backend.calls)
}

func (s *ServiceSuite) TestLoginFailureLeavesPriorIdentity() {
	s.sessions.SetIdentity(studentIdentity())
	s.backend.loginErr = model.NewAuthError(model.AuthCodeInvalidCredentials, "invalid email or password")

	_, err := s.service.Login(s.ctx, "other@b.com", "wrong")
	s.Require().Error(err)
	s.Equal("user_1", s.sessions.Get().Identity.ID)
}

// Logout tests

func (s *ServiceSuite) TestLogoutClearsSession() {
	s.sessions.SetIdentity(studentIdentity())

	s.service.Logout(s.ctx)
	s.Nil(s.sessions.Get().Identity)
}

func (s *ServiceSuite) TestLogoutFailsOpen() {
	s.sessions.SetIdentity(studentIdentity())
	s.backend.endSessionErr = model.ErrNetwork

	// Local state clears even when the backend sign-out fails
	s.service.Logout(s.ctx)
	s.Nil(s.sessions.Get().Identity)
}

func (s *ServiceSuite) TestLogoutWhenSignedOutIsNoOp() {
	s.service.Logout(s.ctx)
	s.Nil(s.sessions.Get().Identity)
	s.Equal(0, s.backend.calls)
}

// UpgradeToTeacher tests

func (s *ServiceSuite) TestUpgradeRequiresIdentity() {
	_, err := s.service.UpgradeToTeacher(s.ctx, []string{"Go"}, "bio")
	s.ErrorIs(err, model.ErrNotAuthenticated)
	s.Equal(0, s.backend.calls)
}

func (s *ServiceSuite) TestUpgradeRequiresInterests() {
	s.sessions.SetIdentity(studentIdentity())

	_, err := s.service.UpgradeToTeacher(s.ctx, nil, "bio")
	s.ErrorIs(err, model.ErrValidation)
	s.Equal(0, s.backend.calls)
}

func (s *ServiceSuite) TestUpgradeSucceeds() {
	s.sessions.SetIdentity(studentIdentity())
	upgraded := studentIdentity()
	upgraded.Roles = upgraded.Roles.Add(model.RoleTeacher)
	upgraded.TeacherProfile = &model.TeacherProfile{
		Interests:   []string{"Go", "Distributed Systems"},
		Bio:         "bio",
		ActivatedAt: s.clock.Now(),
	}
	s.backend.upgradeResult = upgraded

	identity, err := s.service.UpgradeToTeacher(s.ctx, []string{"Go", "Distributed Systems"}, "bio")
	s.Require().NoError(err)

	s.True(identity.Roles.Has(model.RoleTeacher))
	s.Require().NotNil(identity.TeacherProfile)
	s.Equal(s.clock.Now(), identity.TeacherProfile.ActivatedAt)
	s.Equal(identity, s.sessions.Get().Identity)
}

func (s *ServiceSuite) TestUpgradeIsIdempotentGuarded() {
	identity := studentIdentity()
	identity.Roles = identity.Roles.Add(model.RoleTeacher)
	s.sessions.SetIdentity(identity)
	before := s.sessions.Get().Identity

	_, err := s.service.UpgradeToTeacher(s.ctx, []string{"Go"}, "bio")
	s.ErrorIs(err, model.ErrAlreadyTeacher)
	s.Equal(0, s.backend.calls)
	s.Equal(before, s.sessions.Get().Identity)
}

func (s *ServiceSuite) TestUpgradeBackendFailureLeavesSessionUnchanged() {
	s.sessions.SetIdentity(studentIdentity())
	s.backend.upgradeErr = errors.New("boom")

	_, err := s.service.UpgradeToTeacher(s.ctx, []string{"Go"}, "bio")
	s.Require().Error(err)
	s.False(s.sessions.Get().Identity.Roles.Has(model.RoleTeacher))
}

// Scenario from the observable behavior: login, logout, then an
// authenticated route check falls through to login
func (s *ServiceSuite) TestLoginLogoutScenario() {
	s.backend.loginResult = studentIdentity()

	_, err := s.service.Login(s.ctx, "a@b.com", "secret1")
	s.Require().NoError(err)
	s.Equal("a@b.com", s.sessions.Get().Identity.Email)

	s.service.Logout(s.ctx)
	s.Nil(s.sessions.Get().Identity)
}
