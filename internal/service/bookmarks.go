package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/validation"
)

type (
	Store interface {
		Create(ctx context.Context, b models.Bookmark) (models.Bookmark, error)
		GetByID(ctx context.Context, id string) (models.Bookmark, error)
		UpdateByID(ctx context.Context, id string, patch models.BookmarkInput) (models.Bookmark, error)
		DeleteByID(ctx context.Context, id string) (bool, error)
		Query(ctx context.Context, filter db.Filter, order db.Sort, skip, limit int) ([]models.Bookmark, error)
		Count(ctx context.Context, filter db.Filter) (int64, error)
		Ping(ctx context.Context) error
	}

	TitleResolver interface {
		Resolve(ctx context.Context, url string) string
	}

	Bookmarks struct {
		store     Store
		resolver  TitleResolver
		validator *validation.Validator
		logger    *zap.SugaredLogger
	}
)

func NewBookmarks(store Store, resolver TitleResolver, v *validation.Validator, l *zap.SugaredLogger) *Bookmarks {
	return &Bookmarks{
		store:     store,
		resolver:  resolver,
		validator: v,
		logger:    l,
	}
}

// Create validates in, resolves a missing title from the url and stores the bookmark.
// Invalid input comes back as validation.Violations.
func (s *Bookmarks) Create(ctx context.Context, in models.BookmarkInput) (models.Bookmark, error) {
	clean, err := s.validator.Validate(in, validation.ModeCreate)
	if err != nil {
		return models.Bookmark{}, err
	}

	url := *clean.URL
	var title string
	if clean.Title != nil {
		title = *clean.Title
	} else {
		title = s.resolver.Resolve(ctx, url)
		s.logger.Debugw("resolved title", "url", url, "title", title)
	}
	title = strings.TrimSpace(models.TruncateRunes(strings.TrimSpace(title), models.MaxTitleLength))
	if title == "" {
		title = models.TruncateRunes(url, models.MaxTitleLength)
	}

	b, err := s.store.Create(ctx, models.Bookmark{
		URL:         url,
		Title:       title,
		Description: *clean.Description,
		Tags:        clean.Tags,
	})
	if err != nil {
		return models.Bookmark{}, errors.Wrap(err, "store create")
	}

	s.logger.Infow("bookmark created", "id", b.ID)
	return b, nil
}

func (s *Bookmarks) Get(ctx context.Context, id string) (models.Bookmark, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.Bookmark{}, errors.Wrap(err, "store get")
	}
	return b, nil
}

// Update changes only the supplied fields.
func (s *Bookmarks) Update(ctx context.Context, id string, in models.BookmarkInput) (models.Bookmark, error) {
	clean, err := s.validator.Validate(in, validation.ModeUpdate)
	if err != nil {
		return models.Bookmark{}, err
	}

	b, err := s.store.UpdateByID(ctx, id, clean)
	if err != nil {
		return models.Bookmark{}, errors.Wrap(err, "store update")
	}

	s.logger.Infow("bookmark updated", "id", b.ID)
	return b, nil
}

func (s *Bookmarks) Delete(ctx context.Context, id string) error {
	found, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "store delete")
	}
	if !found {
		return db.ErrNotFound
	}

	s.logger.Infow("bookmark deleted", "id", id)
	return nil
}

func (s *Bookmarks) FetchTitle(ctx context.Context, url string) string {
	return s.resolver.Resolve(ctx, strings.TrimSpace(url))
}

func (s *Bookmarks) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Seed creates the given bookmarks only when the store holds none. It returns how many were added.
func (s *Bookmarks) Seed(ctx context.Context, entries []models.BookmarkInput) (int, error) {
	n, err := s.store.Count(ctx, db.Filter{})
	if err != nil {
		return 0, errors.Wrap(err, "count before seed")
	}
	if n > 0 {
		s.logger.Infow("store not empty, skipping seed", "count", n)
		return 0, nil
	}

	for i, e := range entries {
		if _, err := s.Create(ctx, e); err != nil {
			return i, errors.Wrapf(err, "seed entry %d", i)
		}
	}

	s.logger.Infow("seeded bookmarks", "count", len(entries))
	return len(entries), nil
}
