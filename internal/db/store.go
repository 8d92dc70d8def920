package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

const pgUniqueViolation = "23505"

var (
	ErrNotFound    = errors.New("bookmark not found")
	ErrMalformedID = errors.New("malformed bookmark id")
)

type (
	// DuplicateError reports a unique constraint the store refused to break.
	DuplicateError struct {
		Field string
		Err   error
	}

	// ConstraintError is raised by the row hooks when a write slips past validation.
	ConstraintError struct {
		Field string
		Msg   string
	}

	Sort int

	Filter struct {
		// Tag must already be normalized.
		Tag string
		// AnyTerms keeps rows whose title, description or url contains at least one term.
		AnyTerms []string
	}

	Store struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}
)

// The HTTP listing always uses SortNewest. SortOldest is part of the Query contract for
// callers that walk the catalog in insertion order.
const (
	SortNewest Sort = iota
	SortOldest
)

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %q: %v", e.Field, e.Err)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint failed on %q: %s", e.Field, e.Msg)
}

func NewStore(db *gorm.DB, l *zap.SugaredLogger) *Store {
	return &Store{
		db:     db,
		logger: l,
	}
}

func (s *Store) Create(ctx context.Context, b models.Bookmark) (models.Bookmark, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.Bookmark{}, errors.Wrap(err, "generate id")
	}

	rec := Bookmark{
		ID:          id.String(),
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Description,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res := tx.Omit(clause.Associations).Create(&rec); res.Error != nil {
			return res.Error
		}
		tags, err := writeTags(tx, rec.ID, b.Tags)
		if err != nil {
			return err
		}
		rec.Tags = tags
		return nil
	})
	if err != nil {
		return models.Bookmark{}, s.translateError(err, "create bookmark")
	}

	return toModel(rec), nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Bookmark, error) {
	if !validID(id) {
		return models.Bookmark{}, ErrMalformedID
	}

	rec := Bookmark{}
	res := s.db.WithContext(ctx).Preload("Tags", orderByPosition).First(&rec, "id = ?", id)
	if res.Error != nil {
		return models.Bookmark{}, s.translateError(res.Error, "get bookmark")
	}

	return toModel(rec), nil
}

// UpdateByID applies the non-nil fields of patch. Tags, when given, replace the whole set.
func (s *Store) UpdateByID(ctx context.Context, id string, patch models.BookmarkInput) (models.Bookmark, error) {
	if !validID(id) {
		return models.Bookmark{}, ErrMalformedID
	}

	rec := Bookmark{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res := tx.Preload("Tags", orderByPosition).First(&rec, "id = ?", id); res.Error != nil {
			return res.Error
		}

		if patch.URL != nil {
			rec.URL = *patch.URL
		}
		if patch.Title != nil {
			rec.Title = *patch.Title
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}

		if res := tx.Omit(clause.Associations).Save(&rec); res.Error != nil {
			return res.Error
		}

		if patch.Tags == nil {
			return nil
		}
		if res := tx.Where("bookmark_id = ?", rec.ID).Delete(&BookmarkTag{}); res.Error != nil {
			return res.Error
		}
		tags, err := writeTags(tx, rec.ID, patch.Tags)
		if err != nil {
			return err
		}
		rec.Tags = tags
		return nil
	})
	if err != nil {
		return models.Bookmark{}, s.translateError(err, "update bookmark")
	}

	return toModel(rec), nil
}

// DeleteByID reports whether a bookmark with that id existed.
func (s *Store) DeleteByID(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, ErrMalformedID
	}

	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res := tx.Where("bookmark_id = ?", id).Delete(&BookmarkTag{}); res.Error != nil {
			return res.Error
		}
		res := tx.Where("id = ?", id).Delete(&Bookmark{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, s.translateError(err, "delete bookmark")
	}

	return found, nil
}

// Query returns matching bookmarks in the given order. A limit of zero means no limit.
func (s *Store) Query(ctx context.Context, filter Filter, order Sort, skip, limit int) ([]models.Bookmark, error) {
	where, args, err := filter.predicate().ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	q := s.db.WithContext(ctx).
		Preload("Tags", orderByPosition).
		Where(where, args...)
	switch order {
	case SortOldest:
		q = q.Order("created_at ASC").Order("id ASC")
	default:
		q = q.Order("created_at DESC").Order("id DESC")
	}
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	recs := make([]Bookmark, 0)
	if res := q.Find(&recs); res.Error != nil {
		return nil, s.translateError(res.Error, "query bookmarks")
	}

	out := make([]models.Bookmark, len(recs))
	for i := range recs {
		out[i] = toModel(recs[i])
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args, err := filter.predicate().ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build sql")
	}

	var n int64
	if res := s.db.WithContext(ctx).Model(&Bookmark{}).Where(where, args...).Count(&n); res.Error != nil {
		return 0, s.translateError(res.Error, "count bookmarks")
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "ping")
}

func (f Filter) predicate() squirrel.Sqlizer {
	where := squirrel.And{}
	if f.Tag != "" {
		where = append(where, squirrel.Expr(
			"EXISTS (SELECT 1 FROM bookmark_tags bt WHERE bt.bookmark_id = bookmarks.id AND bt.tag = ?)", f.Tag))
	}
	if len(f.AnyTerms) > 0 {
		terms := squirrel.Or{}
		for _, term := range f.AnyTerms {
			like := "%" + strings.ToLower(term) + "%"
			terms = append(terms,
				squirrel.Expr("LOWER(bookmarks.title) LIKE ?", like),
				squirrel.Expr("LOWER(bookmarks.description) LIKE ?", like),
				squirrel.Expr("LOWER(bookmarks.url) LIKE ?", like),
			)
		}
		where = append(where, terms)
	}
	return where
}

func writeTags(tx *gorm.DB, bookmarkID string, tags []string) ([]BookmarkTag, error) {
	if len(tags) > models.MaxTags {
		return nil, &ConstraintError{Field: "tags", Msg: "Tags must be an array of up to 5 items"}
	}
	rows := make([]BookmarkTag, len(tags))
	for i, t := range tags {
		rows[i] = BookmarkTag{BookmarkID: bookmarkID, Position: i, Tag: t}
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if res := tx.Create(&rows); res.Error != nil {
		return nil, res.Error
	}
	return rows, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func toModel(rec Bookmark) models.Bookmark {
	sort.SliceStable(rec.Tags, func(i, j int) bool { return rec.Tags[i].Position < rec.Tags[j].Position })
	tags := make([]string, len(rec.Tags))
	for i := range rec.Tags {
		tags[i] = rec.Tags[i].Tag
	}
	return models.Bookmark{
		ID:          rec.ID,
		URL:         rec.URL,
		Title:       rec.Title,
		Description: rec.Description,
		Tags:        tags,
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
}

func (s *Store) translateError(err error, op string) error {
	var constraintErr *ConstraintError
	if errors.As(err, &constraintErr) {
		return constraintErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		s.logger.Debugw("unique violation", "constraint", pgErr.ConstraintName)
		return &DuplicateError{Field: fieldFromConstraint(pgErr.ConstraintName), Err: err}
	}
	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed:") {
		s.logger.Debugw("unique violation", "error", msg)
		return &DuplicateError{Field: fieldFromSQLite(msg), Err: err}
	}

	return errors.Wrap(err, op)
}

func fieldFromConstraint(name string) string {
	switch {
	case strings.Contains(name, "tag"):
		return "tags"
	case strings.HasSuffix(name, "_pkey"):
		return "id"
	default:
		return name
	}
}

// fieldFromSQLite reads "UNIQUE constraint failed: table.col[, table.col]".
func fieldFromSQLite(msg string) string {
	cols := msg[strings.Index(msg, "UNIQUE constraint failed:")+len("UNIQUE constraint failed:"):]
	first := strings.TrimSpace(strings.SplitN(cols, ",", 2)[0])
	table, col, ok := strings.Cut(first, ".")
	switch {
	case !ok:
		return first
	case table == "bookmark_tags":
		return "tags"
	default:
		return col
	}
}

// validID accepts only the canonical hyphenated form ids are stored in.
func validID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}
