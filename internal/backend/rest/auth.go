package rest

import (
	"context"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tekmiz/tekmiz-go/internal/backend"
	"github.com/tekmiz/tekmiz-go/internal/dependencies/clock"
	"github.com/tekmiz/tekmiz-go/internal/model"
)

// Auth is the auth/session collaborator over the remote API
type Auth struct {
	client *Client
	clock  clock.Clock
	logger *slog.Logger
}

// NewAuth creates a REST auth backend on the shared client
func NewAuth(client *Client, clk clock.Clock, logger *slog.Logger) *Auth {
	return &Auth{
		client: client,
		clock:  clk,
		logger: logger.With(slog.String("component", "rest-auth")),
	}
}

// Ensure Auth implements the collaborator contract
var _ backend.Auth = (*Auth)(nil)

// authResponse is the server's auth envelope
type authResponse struct {
	Identity *model.Identity `json:"identity"`
	Token    string          `json:"token"`
}

func (a *Auth) RegisterAccount(ctx context.Context, displayName, email, password string) (*model.Identity, error) {
	req := map[string]string{
		"display_name": displayName,
		"email":        email,
		"password":     password,
	}
	var resp authResponse
	if err := a.client.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	a.client.SetToken(resp.Token)
	return resp.Identity, nil
}

func (a *Auth) Authenticate(ctx context.Context, email, password string) (*model.Identity, error) {
	req := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp authResponse
	if err := a.client.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	a.client.SetToken(resp.Token)
	return resp.Identity, nil
}

func (a *Auth) EndSession(ctx context.Context) error {
	err := a.client.Post(ctx, "/auth/logout", nil, nil)
	a.client.SetToken("")
	return err
}

// CurrentSession restores the identity behind the persisted bearer
// token. A token that is visibly expired (unverified claim check; the
// server still fully validates) skips the doomed network call and
// reads as signed out, as does a server-side rejection.
func (a *Auth) CurrentSession(ctx context.Context) (*model.Identity, error) {
	token := a.client.Token()
	if token == "" {
		return nil, nil
	}
	if a.tokenExpired(token) {
		a.logger.Debug("persisted token expired, skipping session check")
		a.client.SetToken("")
		return nil, nil
	}

	var resp authResponse
	if err := a.client.Get(ctx, "/auth/session", &resp); err != nil {
		if model.AuthCodeOf(err) == model.AuthCodeInvalidCredentials {
			a.client.SetToken("")
			return nil, nil
		}
		return nil, err
	}
	return resp.Identity, nil
}

func (a *Auth) PersistRoleUpgrade(ctx context.Context, id string, roles model.RoleSet, profile model.TeacherProfile) (*model.Identity, error) {
	req := map[string]any{
		"roles":           roles.Strings(),
		"teacher_profile": profile,
	}
	var resp authResponse
	if err := a.client.Put(ctx, "/auth/users/"+id+"/roles", req, &resp); err != nil {
		return nil, err
	}
	return resp.Identity, nil
}

// tokenExpired checks the exp claim without verifying the signature;
// signature validation is the server's job
func (a *Auth) tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		// Opaque (non-JWT) tokens are passed through to the server
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(a.clock.Now())
}
