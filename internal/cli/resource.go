package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tekmiz/tekmiz-go/internal/guard"
	"github.com/tekmiz/tekmiz-go/internal/model"
)

func newResourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Playlist resource commands",
	}

	cmd.AddCommand(newResourceListCmd())
	cmd.AddCommand(newResourceAddCmd())
	cmd.AddCommand(newResourceDeleteCmd())

	return cmd
}

func newResourceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <playlist-id>",
		Short: "List the resources attached to a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := app.Playlists.Resources(cmd.Context(), model.PlaylistID(args[0]))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintResources(resources)
			return nil
		},
	}
}

func newResourceAddCmd() *cobra.Command {
	var resourceType, title, description, youtubeURL, filePath string

	cmd := &cobra.Command{
		Use:   "add <playlist-id>",
		Short: "Attach a resource to a playlist you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOwnership(cmd, model.PlaylistID(args[0])); err != nil {
				return err
			}

			draft := model.ResourceDraft{
				Type:        model.ResourceType(resourceType),
				Title:       title,
				Description: description,
				YouTubeURL:  youtubeURL,
			}
			if filePath != "" {
				data, err := os.ReadFile(filePath)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				draft.File = model.ThumbnailUpload{
					Filename: filepath.Base(filePath),
					Data:     data,
				}
			}

			resource, err := app.Playlists.AddResource(cmd.Context(), model.PlaylistID(args[0]), draft)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintResources([]*model.Resource{resource})
			return nil
		},
	}

	cmd.Flags().StringVar(&resourceType, "type", "", "Resource type: video, pdf, youtube (required)")
	cmd.Flags().StringVar(&title, "title", "", "Resource title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Resource description")
	cmd.Flags().StringVar(&youtubeURL, "youtube-url", "", "YouTube URL (for type youtube)")
	cmd.Flags().StringVar(&filePath, "file", "", "Path to the file to upload (for video/pdf)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newResourceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(guard.RequireTeacher); err != nil {
				return err
			}

			if err := app.Playlists.RemoveResource(cmd.Context(), model.ResourceID(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Resource deleted")
			return nil
		},
	}
}
