package seed

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

type (
	Entry struct {
		URL         string   `yaml:"url"`
		Title       string   `yaml:"title"`
		Description string   `yaml:"description"`
		Tags        []string `yaml:"tags"`
	}

	File struct {
		Bookmarks []Entry `yaml:"bookmarks"`
	}
)

var defaults = []Entry{
	{
		URL:         "https://developer.mozilla.org",
		Title:       "MDN Web Docs",
		Description: "Comprehensive documentation for HTML, CSS, JavaScript, and Web APIs. The definitive reference for web developers.",
		Tags:        []string{"docs", "javascript", "web"},
	},
	{
		URL:         "https://react.dev",
		Title:       "React: The Library for Web and Native User Interfaces",
		Description: "Official React documentation covering hooks, components, state management, and React 19 features.",
		Tags:        []string{"react", "javascript", "frontend"},
	},
	{
		URL:         "https://tailwindcss.com",
		Title:       "Tailwind CSS: A Utility-First CSS Framework",
		Description: "Rapidly build modern websites without ever leaving your HTML. A utility-first CSS framework packed with classes.",
		Tags:        []string{"css", "frontend", "design"},
	},
	{
		URL:         "https://expressjs.com",
		Title:       "Express: Fast, Unopinionated Web Framework for Node.js",
		Description: "Minimal and flexible Node.js web application framework with a robust set of features for building APIs.",
		Tags:        []string{"nodejs", "backend", "api"},
	},
	{
		URL:         "https://www.mongodb.com/docs",
		Title:       "MongoDB Documentation",
		Description: "Official MongoDB documentation covering CRUD operations, aggregation pipeline, indexing, and Atlas cloud features.",
		Tags:        []string{"mongodb", "database", "backend"},
	},
	{
		URL:         "https://mongoosejs.com",
		Title:       "Mongoose: Elegant MongoDB Object Modeling for Node.js",
		Description: "Mongoose provides a schema-based solution to model application data with built-in type casting, validation, and query building.",
		Tags:        []string{"mongoose", "mongodb", "nodejs"},
	},
}

// Default returns the built-in seed bookmarks.
func Default() []models.BookmarkInput {
	return toInputs(defaults)
}

// Load reads seed bookmarks from a YAML file. An empty path selects the built-in list.
func Load(path string) ([]models.BookmarkInput, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read seed file")
	}

	f := File{}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrapf(err, "parse seed file %s", path)
	}
	return toInputs(f.Bookmarks), nil
}

func toInputs(entries []Entry) []models.BookmarkInput {
	out := make([]models.BookmarkInput, len(entries))
	for i, e := range entries {
		in := models.BookmarkInput{
			URL:         models.StringPtr(e.URL),
			Description: models.StringPtr(e.Description),
			Tags:        e.Tags,
		}
		if e.Title != "" {
			in.Title = models.StringPtr(e.Title)
		}
		out[i] = in
	}
	return out
}
