package service

import (
	"context"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type (
	ListParams struct {
		Tag    string
		Search string
		Page   int
		Limit  int
	}

	ListResult struct {
		Items []models.Bookmark
		Total int64
		Page  int
		Limit int
	}
)

func (r ListResult) Pages() int {
	if r.Limit <= 0 || r.Total <= 0 {
		return 0
	}
	return int((r.Total + int64(r.Limit) - 1) / int64(r.Limit))
}

// NormalizePage coerces non-positive values to the defaults and caps limit at MaxLimit.
func NormalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return page, limit
}

func offset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// List returns one page of bookmarks. Without a search the newest come first; with one the
// matches are ordered by relevance, newest first among equal scores.
func (s *Bookmarks) List(ctx context.Context, p ListParams) (ListResult, error) {
	page, limit := NormalizePage(p.Page, p.Limit)
	res := ListResult{Items: []models.Bookmark{}, Page: page, Limit: limit}
	skip := offset(page, limit)

	filter := db.Filter{Tag: strings.ToLower(strings.TrimSpace(p.Tag))}
	search := strings.TrimSpace(p.Search)

	if search == "" {
		items, err := s.store.Query(ctx, filter, db.SortNewest, skip, limit)
		if err != nil {
			return ListResult{}, errors.Wrap(err, "query bookmarks")
		}
		total, err := s.store.Count(ctx, filter)
		if err != nil {
			return ListResult{}, errors.Wrap(err, "count bookmarks")
		}
		res.Items = items
		res.Total = total
		return res, nil
	}

	terms := Tokenize(search)
	if len(terms) == 0 {
		return res, nil
	}
	filter.AnyTerms = terms

	candidates, err := s.store.Query(ctx, filter, db.SortNewest, 0, 0)
	if err != nil {
		return ListResult{}, errors.Wrap(err, "query search candidates")
	}
	ranked := Rank(candidates, terms)

	res.Total = int64(len(ranked))
	if skip < len(ranked) {
		end := len(ranked)
		if end-skip > limit {
			end = skip + limit
		}
		res.Items = ranked[skip:end]
	}
	s.logger.Debugw("search", "terms", terms, "candidates", len(candidates), "matches", len(ranked))
	return res, nil
}
