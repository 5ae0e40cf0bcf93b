// ABOUTME: Exports a board and its posts as YAML or Markdown documents.
// ABOUTME: Uses gopkg.in/yaml.v3 for serialization with deterministic post ordering.
package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kudohq/kudo/board"
)

// YamlPost is a serializable YAML representation of a single post.
type YamlPost struct {
	ID              string `yaml:"id"`
	Author          string `yaml:"author"`
	Message         string `yaml:"message"`
	ImageURL        string `yaml:"image_url,omitempty"`
	BackgroundColor string `yaml:"background_color"`
	TextColor       string `yaml:"text_color"`
	Position        *int   `yaml:"position,omitempty"`
	Likes           int    `yaml:"likes"`
	CreatedAt       string `yaml:"created_at"`
}

// YamlBoard is the top-level serializable YAML representation of a board.
type YamlBoard struct {
	Title       string     `yaml:"title"`
	Slug        string     `yaml:"slug"`
	Description string     `yaml:"description,omitempty"`
	ExportedAt  string     `yaml:"exported_at"`
	Posts       []YamlPost `yaml:"posts"`
}

// ExportYAML exports a board and its posts as a structured YAML document.
//
// Posts appear in display order: the positions the board shows, the same
// ordering board.SortPosts produces.
func ExportYAML(b board.Board, posts []board.Post, now time.Time) (string, error) {
	ordered := orderedPosts(posts)

	yamlPosts := make([]YamlPost, 0, len(ordered))
	for _, p := range ordered {
		yp := YamlPost{
			ID:              p.ID,
			Author:          p.Author,
			Message:         p.Message,
			BackgroundColor: p.BackgroundColor,
			TextColor:       p.TextColor,
			Position:        p.PositionOrder,
			Likes:           p.Likes,
			CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if p.ImageURL != nil {
			yp.ImageURL = *p.ImageURL
		}
		yamlPosts = append(yamlPosts, yp)
	}

	doc := YamlBoard{
		Title:       b.Title,
		Slug:        b.Slug,
		Description: b.Description,
		ExportedAt:  now.UTC().Format(time.RFC3339),
		Posts:       yamlPosts,
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("yaml marshal: %w", err)
	}
	return string(data), nil
}

// ExportMarkdown exports a board and its posts as a readable Markdown document.
//
// Uses the same display ordering as the YAML exporter.
func ExportMarkdown(b board.Board, posts []board.Post, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", b.Title)
	if b.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", b.Description)
	}
	fmt.Fprintf(&sb, "Exported %s — %d posts\n", now.UTC().Format("2006-01-02"), len(posts))

	for _, p := range orderedPosts(posts) {
		sb.WriteString("\n---\n\n")
		fmt.Fprintf(&sb, "## %s\n\n", p.Author)
		if p.Message != "" {
			fmt.Fprintf(&sb, "%s\n\n", p.Message)
		}
		if p.ImageURL != nil && *p.ImageURL != "" {
			fmt.Fprintf(&sb, "![image](%s)\n\n", *p.ImageURL)
		}
		if p.Likes == 1 {
			sb.WriteString("1 like\n")
		} else {
			fmt.Fprintf(&sb, "%d likes\n", p.Likes)
		}
	}

	return sb.String()
}

// orderedPosts returns a sorted copy without mutating the caller's slice.
func orderedPosts(posts []board.Post) []board.Post {
	out := make([]board.Post, len(posts))
	copy(out, posts)
	board.SortPosts(out)
	return out
}
