package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tekmiz/tekmiz-go/internal/guard"
	"github.com/tekmiz/tekmiz-go/internal/model"
)

func newPlaylistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Playlist management commands",
	}

	cmd.AddCommand(newPlaylistListCmd())
	cmd.AddCommand(newPlaylistSearchCmd())
	cmd.AddCommand(newPlaylistShowCmd())
	cmd.AddCommand(newPlaylistCreateCmd())
	cmd.AddCommand(newPlaylistUpdateCmd())
	cmd.AddCommand(newPlaylistDeleteCmd())
	cmd.AddCommand(newPlaylistViewCmd())
	cmd.AddCommand(newPlaylistCategoriesCmd())

	return cmd
}

func newPlaylistListCmd() *cobra.Command {
	var category string
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List playlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Playlists.FetchAll(cmd.Context()); err != nil {
				return err
			}

			playlists := app.Playlists.All()
			if category != "" {
				playlists = app.Playlists.ByCategory(model.Category(category))
			}
			if mine {
				if err := requireAccess(guard.RequireAuthenticated); err != nil {
					return err
				}
				playlists = app.Playlists.ByAuthor(app.Sessions.Get().Identity.ID)
			}

			out := NewOutput(cfg.Output)
			out.PrintPlaylists(playlists)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only playlists you own")

	return cmd
}

func newPlaylistSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search playlists by title, category, or author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Playlists.FetchAll(cmd.Context()); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintPlaylists(app.Playlists.Search(args[0]))
			return nil
		},
	}
}

func newPlaylistShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Playlists.FetchAll(cmd.Context()); err != nil {
				return err
			}

			p, ok := app.Playlists.ByID(model.PlaylistID(args[0]))
			if !ok {
				return model.ErrPlaylistNotFound
			}

			out := NewOutput(cfg.Output)
			out.PrintPlaylist(p)
			return nil
		},
	}
}

func newPlaylistCreateCmd() *cobra.Command {
	var title, description, category, thumbnail string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a playlist (teacher accounts only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(guard.RequireTeacher); err != nil {
				return err
			}

			draft := model.PlaylistDraft{
				Title:       title,
				Description: description,
				Category:    model.Category(category),
			}
			if thumbnail != "" {
				data, err := os.ReadFile(thumbnail)
				if err != nil {
					return fmt.Errorf("failed to read thumbnail: %w", err)
				}
				draft.Thumbnail = model.ThumbnailUpload{
					Filename: filepath.Base(thumbnail),
					Data:     data,
				}
			}

			created, err := app.Playlists.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintPlaylist(created)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Playlist title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Playlist description")
	cmd.Flags().StringVar(&category, "category", "", "Category (required; see 'playlist categories')")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Path to a thumbnail image")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newPlaylistUpdateCmd() *cobra.Command {
	var title, description, category string
	var trending bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a playlist you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOwnership(cmd, model.PlaylistID(args[0])); err != nil {
				return err
			}

			update := model.PlaylistUpdate{}
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("description") {
				update.Description = &description
			}
			if cmd.Flags().Changed("category") {
				c := model.Category(category)
				update.Category = &c
			}
			if cmd.Flags().Changed("trending") {
				update.Trending = &trending
			}

			updated, err := app.Playlists.Update(cmd.Context(), model.PlaylistID(args[0]), update)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintPlaylist(updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().BoolVar(&trending, "trending", false, "Mark as trending")

	return cmd
}

func newPlaylistDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a playlist you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOwnership(cmd, model.PlaylistID(args[0])); err != nil {
				return err
			}

			if err := app.Playlists.Remove(cmd.Context(), model.PlaylistID(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Playlist deleted")
			return nil
		},
	}
}

func newPlaylistViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <id>",
		Short: "Record a view on a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := app.Playlists.RecordView(cmd.Context(), model.PlaylistID(args[0]))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintPlaylist(updated)
			return nil
		},
	}
}

func newPlaylistCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the valid playlist categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(model.Categories()))
			for _, c := range model.Categories() {
				names = append(names, string(c))
			}
			out := NewOutput(cfg.Output)
			out.PrintMessage(strings.Join(names, "\n"))
			return nil
		},
	}
}

// requireOwnership gates a mutating command on the teacher requirement
// and on owning the target playlist. Display gating only; the backend
// re-validates on the actual call.
func requireOwnership(cmd *cobra.Command, id model.PlaylistID) error {
	if err := requireAccess(guard.RequireTeacher); err != nil {
		return err
	}
	if err := app.Playlists.FetchAll(cmd.Context()); err != nil {
		return err
	}

	p, ok := app.Playlists.ByID(id)
	if !ok {
		return model.ErrPlaylistNotFound
	}
	if p.AuthorID != app.Sessions.Get().Identity.ID {
		return errors.New("you can only modify playlists you created")
	}
	return nil
}
