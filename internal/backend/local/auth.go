// Package local implements the backend collaborators against a local
// key-value store. It is an explicit degraded mode for running without
// a configured server, not the primary design: accounts, sessions, and
// playlists live entirely in the client's own store.
package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tekmiz/tekmiz-go/internal/backend"
	"github.com/tekmiz/tekmiz-go/internal/dependencies/clock"
	"github.com/tekmiz/tekmiz-go/internal/kv"
	"github.com/tekmiz/tekmiz-go/internal/model"
)

const sessionTokenTTL = 24 * time.Hour

// account is the stored registration record. The password hash never
// leaves this package.
type account struct {
	ID           string                `json:"id"`
	Email        string                `json:"email"`
	DisplayName  string                `json:"display_name"`
	PasswordHash string                `json:"password_hash"`
	Roles        []string              `json:"roles"`
	Profile      *model.TeacherProfile `json:"teacher_profile,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

func (a *account) identity() *model.Identity {
	return &model.Identity{
		ID:             a.ID,
		Email:          a.Email,
		DisplayName:    a.DisplayName,
		Roles:          model.ParseRoles(a.Roles),
		TeacherProfile: a.Profile,
		CreatedAt:      a.CreatedAt,
	}
}

// Auth is the local auth/session collaborator
type Auth struct {
	store  kv.Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewAuth creates a local auth backend over the given store
func NewAuth(store kv.Store, clk clock.Clock, logger *slog.Logger) *Auth {
	return &Auth{
		store:  store,
		clock:  clk,
		logger: logger.With(slog.String("component", "local-auth")),
	}
}

// Ensure Auth implements the collaborator contract
var _ backend.Auth = (*Auth)(nil)

func (a *Auth) RegisterAccount(ctx context.Context, displayName, email, password string) (*model.Identity, error) {
	if _, err := a.loadAccount(ctx, email); err == nil {
		return nil, model.NewAuthError(model.AuthCodeEmailExists, "email already registered")
	} else if !errors.Is(err, kv.ErrKeyNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	acct := &account{
		ID:           "user_" + uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Roles:        []string{string(model.RoleStudent)},
		CreatedAt:    a.clock.Now(),
	}

	if err := a.saveAccount(ctx, acct); err != nil {
		return nil, err
	}

	identity := acct.identity()
	if err := a.beginSession(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (a *Auth) Authenticate(ctx context.Context, email, password string) (*model.Identity, error) {
	acct, err := a.loadAccount(ctx, email)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, model.NewAuthError(model.AuthCodeAccountNotFound, "no account for this email")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewAuthError(model.AuthCodeInvalidCredentials, "invalid email or password")
	}

	identity := acct.identity()
	if err := a.beginSession(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (a *Auth) EndSession(ctx context.Context) error {
	return a.clearSession(ctx)
}

// CurrentSession rebuilds the identity from the persisted flat keys,
// provided the stored session token is still valid. An expired or
// tampered token clears the session and reads as signed out.
func (a *Auth) CurrentSession(ctx context.Context) (*model.Identity, error) {
	token, err := a.store.Get(ctx, keySessionToken)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := a.verifyToken(ctx, token); err != nil {
		a.logger.Warn("stored session token rejected", slog.Any("error", err))
		_ = a.clearSession(ctx)
		return nil, nil
	}

	return a.readSessionIdentity(ctx)
}

func (a *Auth) PersistRoleUpgrade(ctx context.Context, id string, roles model.RoleSet, profile model.TeacherProfile) (*model.Identity, error) {
	acct, err := a.findAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	acct.Roles = roles.Strings()
	acct.Profile = &profile
	if err := a.saveAccount(ctx, acct); err != nil {
		return nil, err
	}

	identity := acct.identity()
	if err := a.writeSessionIdentity(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// Account storage

func (a *Auth) loadAccount(ctx context.Context, email string) (*account, error) {
	data, err := a.store.Get(ctx, accountKey(email))
	if err != nil {
		return nil, err
	}
	var acct account
	if err := json.Unmarshal([]byte(data), &acct); err != nil {
		return nil, fmt.Errorf("corrupt account record: %w", err)
	}
	return &acct, nil
}

func (a *Auth) saveAccount(ctx context.Context, acct *account) error {
	data, err := json.Marshal(acct)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, accountKey(acct.Email), string(data))
}

func (a *Auth) findAccountByID(ctx context.Context, id string) (*account, error) {
	keys, err := a.store.Keys(ctx, "account:")
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		data, err := a.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var acct account
		if err := json.Unmarshal([]byte(data), &acct); err != nil {
			continue
		}
		if acct.ID == id {
			return &acct, nil
		}
	}
	return nil, model.ErrIdentityNotFound
}

// Session persistence

func (a *Auth) beginSession(ctx context.Context, identity *model.Identity) error {
	token, err := a.mintToken(ctx, identity)
	if err != nil {
		return err
	}
	if err := a.store.Set(ctx, keySessionToken, token); err != nil {
		return err
	}
	return a.writeSessionIdentity(ctx, identity)
}

func (a *Auth) writeSessionIdentity(ctx context.Context, identity *model.Identity) error {
	pairs := map[string]string{
		keySessionUserID:    identity.ID,
		keySessionEmail:     identity.Email,
		keySessionName:      identity.DisplayName,
		keySessionRoles:     strings.Join(identity.Roles.Strings(), ","),
		keySessionCreatedAt: identity.CreatedAt.Format(time.RFC3339),
	}
	if tp := identity.TeacherProfile; tp != nil {
		pairs[keySessionInterests] = strings.Join(tp.Interests, ",")
		pairs[keySessionBio] = tp.Bio
		pairs[keySessionActivatedAt] = tp.ActivatedAt.Format(time.RFC3339)
	}
	for key, value := range pairs {
		if err := a.store.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (a *Auth) readSessionIdentity(ctx context.Context) (*model.Identity, error) {
	get := func(key string) string {
		value, err := a.store.Get(ctx, key)
		if err != nil {
			return ""
		}
		return value
	}

	id := get(keySessionUserID)
	if id == "" {
		return nil, nil
	}

	identity := &model.Identity{
		ID:          id,
		Email:       get(keySessionEmail),
		DisplayName: get(keySessionName),
		Roles:       model.ParseRoles(strings.Split(get(keySessionRoles), ",")),
	}
	if createdAt, err := time.Parse(time.RFC3339, get(keySessionCreatedAt)); err == nil {
		identity.CreatedAt = createdAt
	}
	if interests := get(keySessionInterests); interests != "" {
		profile := &model.TeacherProfile{
			Interests: strings.Split(interests, ","),
			Bio:       get(keySessionBio),
		}
		if activated, err := time.Parse(time.RFC3339, get(keySessionActivatedAt)); err == nil {
			profile.ActivatedAt = activated
		}
		identity.TeacherProfile = profile
	}
	return identity, nil
}

func (a *Auth) clearSession(ctx context.Context) error {
	keys := []string{
		keySessionToken,
		keySessionUserID,
		keySessionEmail,
		keySessionName,
		keySessionRoles,
		keySessionInterests,
		keySessionBio,
		keySessionActivatedAt,
		keySessionCreatedAt,
	}
	for _, key := range keys {
		if err := a.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Token handling

func (a *Auth) mintToken(ctx context.Context, identity *model.Identity) (string, error) {
	secret, err := a.signingSecret(ctx)
	if err != nil {
		return "", err
	}

	now := a.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   identity.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (a *Auth) verifyToken(ctx context.Context, token string) error {
	secret, err := a.signingSecret(ctx)
	if err != nil {
		return err
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.clock.Now),
	)
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid session token")
	}
	return nil
}

// signingSecret loads the HS256 secret, generating one on first use
func (a *Auth) signingSecret(ctx context.Context) ([]byte, error) {
	value, err := a.store.Get(ctx, keySigningSecret)
	if err == nil {
		return hex.DecodeString(value)
	}
	if !errors.Is(err, kv.ErrKeyNotFound) {
		return nil, err
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	if err := a.store.Set(ctx, keySigningSecret, hex.EncodeToString(secret)); err != nil {
		return nil, err
	}
	return secret, nil
}
