// Package cli is the user-facing surface of the client: it plays the
// role the page router and UI components play in the browser app,
// consulting the authorization guard before gated commands and
// presenting classified errors.
package cli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tekmiz/tekmiz-go/internal/factory"
	"github.com/tekmiz/tekmiz-go/internal/guard"
	kvredis "github.com/tekmiz/tekmiz-go/internal/kv/redis"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tekmiz",
		Short: "CLI client for the Tekmiz e-learning platform",
		Long: `tekmiz is a CLI client for the Tekmiz e-learning platform.

It supports account registration and login, the student-to-teacher
role upgrade, and playlist and resource management against either the
remote API or a local persisted fallback store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			factoryCfg := factory.Config{
				BackendType: cfg.Backend,
				ServerURL:   cfg.ServerURL,
				Token:       cfg.Token,
				Logger:      newLogger(cfg.Verbose),
			}
			if cfg.Backend == factory.BackendTypeLocal && cfg.RedisURL != "" {
				redisCfg := kvredis.DefaultConfig()
				redisCfg.URL = cfg.RedisURL
				factoryCfg.KVType = factory.KVTypeRedis
				factoryCfg.RedisConfig = &redisCfg
			}

			var err error
			app, err = factory.New(factoryCfg)
			if err != nil {
				return err
			}

			// One-time startup session check
			app.Auth.Init(cmd.Context())
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.Backend, "backend", cfg.Backend, "Backend: rest, local (env: TEKMIZ_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TEKMIZ_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: TEKMIZ_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: TEKMIZ_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the local backend (env: TEKMIZ_REDIS_URL)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newUpgradeTeacherCmd())
	rootCmd.AddCommand(newPlaylistCmd())
	rootCmd.AddCommand(newResourceCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// requireAccess consults the authorization guard for the given
// requirement and maps its redirect decisions onto CLI errors. The
// guard itself never acts; this is the "router" acting on its verdict.
func requireAccess(req guard.Requirement) error {
	switch guard.Decide(app.Sessions.Get(), req) {
	case guard.Allow:
		return nil
	case guard.RedirectToLogin:
		return errors.New("you are not logged in; run 'tekmiz login' first")
	case guard.RedirectToHome:
		return errors.New("a teacher account is required; run 'tekmiz upgrade-teacher' first")
	case guard.Pending:
		return errors.New("session check has not completed")
	default:
		return errors.New("access denied")
	}
}

// saveSessionToken persists the rest-mode bearer token so the session
// survives across CLI runs
func saveSessionToken() error {
	if app.RestClient == nil {
		return nil
	}
	token := app.RestClient.Token()
	if token == "" {
		return cfg.ClearToken()
	}
	return cfg.SaveToken(token)
}
