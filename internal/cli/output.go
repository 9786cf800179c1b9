package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tekmiz/tekmiz-go/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintIdentity outputs an identity
func (o *Output) PrintIdentity(identity *model.Identity) {
	if o.format == "json" {
		o.printJSON(identity)
		return
	}

	fmt.Printf("User: %s <%s> (%s)\n", identity.DisplayName, identity.Email, identity.ID)
	fmt.Printf("Roles: %s\n", strings.Join(identity.Roles.Strings(), ", "))
	if tp := identity.TeacherProfile; tp != nil {
		fmt.Printf("Teacher since: %s\n", tp.ActivatedAt.Format("2006-01-02"))
		fmt.Printf("Interests: %s\n", strings.Join(tp.Interests, ", "))
		if tp.Bio != "" {
			fmt.Printf("Bio: %s\n", tp.Bio)
		}
	}
}

// PrintPlaylist outputs a single playlist in full
func (o *Output) PrintPlaylist(p *model.Playlist) {
	if o.format == "json" {
		o.printJSON(p)
		return
	}

	fmt.Printf("Playlist: %s (%s)\n", p.Title, p.ID)
	fmt.Printf("Category: %s\n", p.Category)
	fmt.Printf("Author: %s\n", p.Author)
	if p.Description != "" {
		fmt.Printf("Description: %s\n", p.Description)
	}
	fmt.Printf("Views: %d  Likes: %d  Resources: %d\n", p.Views, p.Likes, p.ResourcesCount)
	if p.Trending {
		fmt.Println("Trending: yes")
	}
}

// PrintPlaylists outputs a playlist listing
func (o *Output) PrintPlaylists(playlists []*model.Playlist) {
	if o.format == "json" {
		o.printJSON(playlists)
		return
	}

	if len(playlists) == 0 {
		fmt.Println("No playlists found")
		return
	}
	for _, p := range playlists {
		fmt.Printf("%s  %-30s  %-16s  by %s (%d views)\n",
			p.ID, truncate(p.Title, 30), p.Category, p.Author, p.Views)
	}
}

// PrintResources outputs a resource listing
func (o *Output) PrintResources(resources []*model.Resource) {
	if o.format == "json" {
		o.printJSON(resources)
		return
	}

	if len(resources) == 0 {
		fmt.Println("No resources found")
		return
	}
	for _, r := range resources {
		fmt.Printf("%s  [%s]  %s  %s\n", r.ID, r.Type, truncate(r.Title, 30), r.URL)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
