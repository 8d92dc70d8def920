package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxURLLength         = 2000
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
	MaxTags              = 5
	MaxTagLength         = 30
)

type (
	// Bookmark is the client-facing shape of a stored bookmark.
	Bookmark struct {
		ID          string    `json:"id"`
		URL         string    `json:"url"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Tags        []string  `json:"tags"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// BookmarkInput is a create or update request. A nil field was not supplied.
	BookmarkInput struct {
		URL         *string  `json:"url"`
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Tags        []string `json:"tags"`
	}
)

// NormalizeTags trims, lowercases and deduplicates tags, keeping first-seen order.
// The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// TruncateRunes cuts s to at most n characters without splitting a rune.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func StringPtr(s string) *string {
	return &s
}
