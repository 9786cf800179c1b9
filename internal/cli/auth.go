package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tekmiz/tekmiz-go/internal/guard"
)

func newRegisterCmd() *cobra.Command {
	var name, email, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new student account",
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.Auth.Register(cmd.Context(), name, email, pass)
			if err != nil {
				return err
			}
			if err := saveSessionToken(); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintIdentity(identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.Auth.Login(cmd.Context(), email, pass)
			if err != nil {
				return err
			}
			if err := saveSessionToken(); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintIdentity(identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Auth.Logout(cmd.Context())
			if err := saveSessionToken(); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(guard.RequireAuthenticated); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintIdentity(app.Sessions.Get().Identity)
			return nil
		},
	}
}

func newUpgradeTeacherCmd() *cobra.Command {
	var interests []string
	var bio string

	cmd := &cobra.Command{
		Use:   "upgrade-teacher",
		Short: "Upgrade the current account to a teacher account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(guard.RequireAuthenticated); err != nil {
				return err
			}

			identity, err := app.Auth.UpgradeToTeacher(cmd.Context(), interests, bio)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintIdentity(identity)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&interests, "interest", nil, "Teaching interest (repeatable, at least one required)")
	cmd.Flags().StringVar(&bio, "bio", "", "Short teacher bio")

	return cmd
}
