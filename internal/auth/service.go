// Package auth implements the auth operations: register, login,
// logout, and the student-to-teacher role upgrade. Each operation is
// a single backend call that, on success, replaces the session store's
// identity atomically; on failure the prior state is left untouched
// and a classified error is returned.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tekmiz/tekmiz-go/internal/backend"
	"github.com/tekmiz/tekmiz-go/internal/dependencies/clock"
	"github.com/tekmiz/tekmiz-go/internal/model"
	"github.com/tekmiz/tekmiz-go/internal/session"
)

// Service is the only writer of the session store
type Service struct {
	sessions *session.Store
	backend  backend.Auth
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates an auth service
func New(sessions *session.Store, b backend.Auth, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		sessions: sessions,
		backend:  b,
		clock:    clk,
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// Init performs the one-time startup session check. A failed check is
// treated as "no identity": it never returns an error and never
// retries, it only logs.
func (s *Service) Init(ctx context.Context) {
	identity, err := s.backend.CurrentSession(ctx)
	if err != nil {
		s.logger.Warn("startup session check failed, treating as signed out",
			slog.Any("error", err))
		identity = nil
	}
	s.sessions.Initialize(identity)
}

// Register creates a new account and signs it in. The new identity's
// roles are exactly {student} and it has no teacher profile.
func (s *Service) Register(ctx context.Context, displayName, email, password string) (*model.Identity, error) {
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	identity, err := s.backend.RegisterAccount(ctx, displayName, email, password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.sessions.SetIdentity(identity)
	s.logger.Info("registered", slog.String("id", identity.ID))
	return identity, nil
}

// Login authenticates existing credentials and replaces the session
// identity with the full persisted identity (roles, teacher profile)
func (s *Service) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, model.ValidationError("password must not be empty")
	}

	identity, err := s.backend.Authenticate(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.sessions.SetIdentity(identity)
	s.logger.Info("logged in", slog.String("id", identity.ID))
	return identity, nil
}

// Logout clears the session unconditionally. The backend sign-out call
// is best-effort: a failure is logged, local state is cleared anyway,
// so a broken backend can never trap the user in a signed-in state.
// Logging out while already signed out is a no-op success.
func (s *Service) Logout(ctx context.Context) {
	if s.sessions.Get().Identity == nil {
		return
	}

	if err := s.backend.EndSession(ctx); err != nil {
		s.logger.Warn("backend sign-out failed, clearing local session anyway",
			slog.Any("error", err))
	}

	s.sessions.SetIdentity(nil)
	s.logger.Info("logged out")
}

// UpgradeToTeacher adds the teacher role and profile to the current
// identity. This is the only operation that may add the teacher role.
// Calling it when the identity already holds the role fails with
// model.ErrAlreadyTeacher and performs no network call and no mutation.
func (s *Service) UpgradeToTeacher(ctx context.Context, interests []string, bio string) (*model.Identity, error) {
	current := s.sessions.Get().Identity
	if current == nil {
		return nil, model.ErrNotAuthenticated
	}
	if current.Roles.Has(model.RoleTeacher) {
		return nil, model.ErrAlreadyTeacher
	}
	if len(interests) == 0 {
		return nil, model.ValidationError("at least one interest is required")
	}

	profile := model.TeacherProfile{
		Interests:   interests,
		Bio:         bio,
		ActivatedAt: s.clock.Now(),
	}

	identity, err := s.backend.PersistRoleUpgrade(ctx, current.ID, current.Roles.Add(model.RoleTeacher), profile)
	if err != nil {
		return nil, fmt.Errorf("upgrade to teacher: %w", err)
	}

	s.sessions.SetIdentity(identity)
	s.logger.Info("upgraded to teacher", slog.String("id", identity.ID))
	return identity, nil
}
