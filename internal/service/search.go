package service

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

// Field weights for relevance scoring.
const (
	WeightTitle       = 3
	WeightDescription = 1
	WeightURL         = 2
)

// Tokenize lowercases s and splits it into distinct words of letters and digits.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Score counts the search terms found as whole words in each field, weighted per field.
func Score(b models.Bookmark, terms []string) int {
	return WeightTitle*matches(b.Title, terms) +
		WeightDescription*matches(b.Description, terms) +
		WeightURL*matches(b.URL, terms)
}

func matches(field string, terms []string) int {
	words := Tokenize(field)
	if len(words) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	n := 0
	for _, t := range terms {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// Rank drops items that do not match any term and orders the rest by score, highest first.
// Items with equal scores keep their incoming order.
func Rank(items []models.Bookmark, terms []string) []models.Bookmark {
	type scored struct {
		b     models.Bookmark
		score int
	}
	kept := make([]scored, 0, len(items))
	for _, b := range items {
		if s := Score(b, terms); s > 0 {
			kept = append(kept, scored{b: b, score: s})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })

	out := make([]models.Bookmark, len(kept))
	for i := range kept {
		out[i] = kept[i].b
	}
	return out
}
