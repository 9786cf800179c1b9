package rest

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/tekmiz/tekmiz-go/internal/dependencies/mocks"
	"github.com/tekmiz/tekmiz-go/internal/mockapi"
	"github.com/tekmiz/tekmiz-go/internal/model"
	"github.com/tekmiz/tekmiz-go/internal/testutil"
)

type AuthSuite struct {
	suite.Suite
	api    *mockapi.Server
	server *httptest.Server
	client *Client
	clock  *mocks.MockClock
	auth   *Auth
	ctx    context.Context
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.api = mockapi.New()
	s.server = httptest.NewServer(s.api)
	s.client = NewClient(s.server.URL, "")
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.auth = NewAuth(s.client, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *AuthSuite) TearDownTest() {
	s.server.Close()
}

func (s *AuthSuite) seedAccount() *model.Identity {
	identity := &model.Identity{
		ID:          "user_1",
		Email:       "ada@example.com",
		DisplayName: "Ada",
		Roles:       model.RoleSet{model.RoleStudent},
	}
	s.api.SeedAccount(identity, "secret1")
	return identity
}

func (s *AuthSuite) TestRegisterAccount() {
	identity, err := s.auth.RegisterAccount(s.ctx, "Ada", "ada@example.com", "secret1")
	s.Require().NoError(err)

	s.NotEmpty(identity.ID)
	s.Equal(model.RoleSet{model.RoleStudent}, identity.Roles)
	s.Nil(identity.TeacherProfile)
	s.NotEmpty(s.client.Token(), "registration should install the session token")
}

func (s *AuthSuite) TestRegisterDuplicateEmail() {
	s.seedAccount()

	_, err := s.auth.RegisterAccount(s.ctx, "Ada Again", "ada@example.com", "secret2")
	s.Equal(model.AuthCodeEmailExists, model.AuthCodeOf(err))
	s.Empty(s.client.Token())
}

func (s *AuthSuite) TestAuthenticate() {
	seeded := s.seedAccount()

	identity, err := s.auth.Authenticate(s.ctx, "ada@example.com", "secret1")
	s.Require().NoError(err)
	s.Equal(seeded.ID, identity.ID)
	s.NotEmpty(s.client.Token())
}

func (s *AuthSuite) TestAuthenticateWrongPassword() {
	s.seedAccount()

	_, err := s.auth.Authenticate(s.ctx, "ada@example.com", "wrong")
	s.Equal(model.AuthCodeInvalidCredentials, model.AuthCodeOf(err))
}

func (s *AuthSuite) TestAuthenticateUnknownEmail() {
	_, err := s.auth.Authenticate(s.ctx, "nobody@example.com", "secret1")
	s.Equal(model.AuthCodeAccountNotFound, model.AuthCodeOf(err))
}

func (s *AuthSuite) TestEndSessionClearsToken() {
	s.seedAccount()
	_, err := s.auth.Authenticate(s.ctx, "ada@example.com", "secret1")
	s.Require().NoError(err)

	s.Require().NoError(s.auth.EndSession(s.ctx))
	s.Empty(s.client.Token())
}

func (s *AuthSuite) TestCurrentSessionWithoutToken() {
	identity, err := s.auth.CurrentSession(s.ctx)
	s.NoError(err)
	s.Nil(identity)
}

func (s *AuthSuite) TestCurrentSessionRestoresIdentity() {
	seeded := s.seedAccount()
	s.client.SetToken(s.api.SessionTokenFor("ada@example.com"))

	identity, err := s.auth.CurrentSession(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(identity)
	s.Equal(seeded.ID, identity.ID)
}

func (s *AuthSuite) TestCurrentSessionRejectedTokenReadsAsSignedOut() {
	s.client.SetToken("sess_bogus")

	identity, err := s.auth.CurrentSession(s.ctx)
	s.NoError(err)
	s.Nil(identity)
	s.Empty(s.client.Token())
}

func (s *AuthSuite) TestCurrentSessionSkipsCallForExpiredJWT() {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user_1",
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(-time.Hour)),
	})
	token, err := expired.SignedString([]byte("irrelevant"))
	s.Require().NoError(err)
	s.client.SetToken(token)

	// Shut the server down: a network call here would fail loudly
	s.server.Close()

	identity, err := s.auth.CurrentSession(s.ctx)
	s.NoError(err)
	s.Nil(identity)
	s.Empty(s.client.Token())
}

func (s *AuthSuite) TestPersistRoleUpgrade() {
	seeded := s.seedAccount()
	s.client.SetToken(s.api.SessionTokenFor("ada@example.com"))

	profile := model.TeacherProfile{
		Interests:   []string{"Go"},
		Bio:         "hello",
		ActivatedAt: s.clock.Now(),
	}
	upgraded, err := s.auth.PersistRoleUpgrade(s.ctx, seeded.ID,
		seeded.Roles.Add(model.RoleTeacher), profile)
	s.Require().NoError(err)

	s.True(upgraded.Roles.Has(model.RoleTeacher))
	s.Require().NotNil(upgraded.TeacherProfile)
	s.Equal([]string{"Go"}, upgraded.TeacherProfile.Interests)
}

func (s *AuthSuite) TestPersistRoleUpgradeUnknownID() {
	_, err := s.auth.PersistRoleUpgrade(s.ctx, "user_missing",
		model.RoleSet{model.RoleStudent, model.RoleTeacher}, model.TeacherProfile{})
	s.Equal(model.AuthCodeAccountNotFound, model.AuthCodeOf(err))
}

func (s *AuthSuite) TestRateLimitedClassification() {
	s.api.ForceStatus = 429

	_, err := s.auth.Authenticate(s.ctx, "ada@example.com", "secret1")
	s.Equal(model.AuthCodeRateLimited, model.AuthCodeOf(err))
}

func (s *AuthSuite) TestTransportFailureIsNetworkError() {
	s.server.Close()

	_, err := s.auth.Authenticate(s.ctx, "ada@example.com", "secret1")
	s.ErrorIs(err, model.ErrNetwork)
}
