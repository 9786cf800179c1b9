// Package factory wires the client core: session store, auth service,
// playlist collection store, and the chosen backend collaborators.
// Stores are constructed exactly once here and passed by reference to
// consumers; there is no ambient global state.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/tekmiz/tekmiz-go/internal/auth"
	"github.com/tekmiz/tekmiz-go/internal/backend"
	"github.com/tekmiz/tekmiz-go/internal/backend/local"
	"github.com/tekmiz/tekmiz-go/internal/backend/rest"
	"github.com/tekmiz/tekmiz-go/internal/dependencies/clock"
	"github.com/tekmiz/tekmiz-go/internal/kv"
	kvmemory "github.com/tekmiz/tekmiz-go/internal/kv/memory"
	kvredis "github.com/tekmiz/tekmiz-go/internal/kv/redis"
	"github.com/tekmiz/tekmiz-go/internal/playlist"
	"github.com/tekmiz/tekmiz-go/internal/session"
)

// Backend type constants
const (
	BackendTypeRest  = "rest"
	BackendTypeLocal = "local"
)

// KV type constants for the local fallback
const (
	KVTypeMemory = "memory"
	KVTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Stores
	Sessions  *session.Store
	Playlists *playlist.Store

	// Services
	Auth *auth.Service

	// Backends
	AuthBackend     backend.Auth
	PlaylistBackend backend.Playlists

	// RestClient is set only in rest mode; the CLI uses it to persist
	// the bearer token across runs
	RestClient *rest.Client

	// External dependencies
	Clock clock.Clock
}

// Config holds configuration for the application factory
type Config struct {
	// BackendType selects the collaborator implementation
	// ("rest" or "local"). Defaults to "rest".
	BackendType string
	// ServerURL is the API base URL (required in rest mode)
	ServerURL string
	// Token is the persisted bearer token, if any (rest mode)
	Token string
	// KVType selects the local fallback's store ("memory" or "redis").
	// Defaults to "memory".
	KVType string
	// RedisConfig holds Redis settings (required if KVType is "redis")
	RedisConfig *kvredis.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()

	backendType := cfg.BackendType
	if backendType == "" {
		backendType = BackendTypeRest
	}

	var (
		authBackend     backend.Auth
		playlistBackend backend.Playlists
		restClient      *rest.Client
	)

	switch backendType {
	case BackendTypeRest:
		if cfg.ServerURL == "" {
			return nil, errors.New("ServerURL required when BackendType is rest")
		}
		restClient = rest.NewClient(cfg.ServerURL, cfg.Token)
		authBackend = rest.NewAuth(restClient, clk, logger)
		playlistBackend = rest.NewPlaylists(restClient)

	case BackendTypeLocal:
		store, err := newKV(cfg)
		if err != nil {
			return nil, err
		}
		authBackend = local.NewAuth(store, clk, logger)
		playlistBackend = local.NewPlaylists(store, clk, logger)

	default:
		return nil, errors.New("invalid BackendType: must be 'rest' or 'local'")
	}

	return newWithDependencies(authBackend, playlistBackend, restClient, clk, logger), nil
}

func newKV(cfg Config) (kv.Store, error) {
	kvType := cfg.KVType
	if kvType == "" {
		kvType = KVTypeMemory
	}

	switch kvType {
	case KVTypeMemory:
		return kvmemory.New(), nil
	case KVTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when KVType is redis")
		}
		return kvredis.New(*cfg.RedisConfig)
	default:
		return nil, errors.New("invalid KVType: must be 'memory' or 'redis'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(authBackend backend.Auth, playlistBackend backend.Playlists, restClient *rest.Client, clk clock.Clock, logger *slog.Logger) *App {
	sessions := session.NewStore(logger)
	authService := auth.New(sessions, authBackend, clk, logger)
	playlists := playlist.NewStore(playlistBackend, sessions, clk, logger)

	return &App{
		Sessions:        sessions,
		Playlists:       playlists,
		Auth:            authService,
		AuthBackend:     authBackend,
		PlaylistBackend: playlistBackend,
		RestClient:      restClient,
		Clock:           clk,
	}
}
