package db_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/db/dbtest"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

func mustCreate(t *testing.T, s *db.Store, url, title string, tags ...string) models.Bookmark {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	b, err := s.Create(context.Background(), models.Bookmark{URL: url, Title: title, Tags: tags})
	require.NoError(t, err)
	return b
}

func TestStoreCreateAndGet(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.Bookmark{
		URL:         "https://go.dev",
		Title:       "Go",
		Description: "The Go language",
		Tags:        []string{"lang", "go", "docs"},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "https://go.dev", got.URL)
	assert.Equal(t, "The Go language", got.Description)
	assert.Equal(t, []string{"lang", "go", "docs"}, got.Tags)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestStoreGetErrors(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()

	_, err := s.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, db.ErrMalformedID)

	_, err = s.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, db.ErrNotFound)

	b := mustCreate(t, s, "https://a.com", "Alpha")
	parsed := uuid.MustParse(b.ID)
	for _, alt := range []string{
		"{" + b.ID + "}",
		parsed.URN(),
		strings.ReplaceAll(b.ID, "-", ""),
		strings.ToUpper(b.ID),
	} {
		_, err = s.GetByID(ctx, alt)
		assert.ErrorIs(t, err, db.ErrMalformedID, alt)

		_, err = s.DeleteByID(ctx, alt)
		assert.ErrorIs(t, err, db.ErrMalformedID, alt)
	}
}

func TestStoreUpdate(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	before := mustCreate(t, s, "https://a.com", "Alpha", "x", "y")

	title := "New"
	updated, err := s.UpdateByID(ctx, before.ID, models.BookmarkInput{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, before.URL, updated.URL)
	assert.Equal(t, before.Tags, updated.Tags)
	assert.True(t, before.CreatedAt.Equal(updated.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(before.UpdatedAt))

	updated, err = s.UpdateByID(ctx, before.ID, models.BookmarkInput{Tags: []string{"z"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, updated.Tags)

	got, err := s.GetByID(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, []string{"z"}, got.Tags)

	updated, err = s.UpdateByID(ctx, before.ID, models.BookmarkInput{Tags: []string{}})
	require.NoError(t, err)
	assert.Equal(t, []string{}, updated.Tags)
}

func TestStoreUpdateErrors(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	title := "T"

	_, err := s.UpdateByID(ctx, "42", models.BookmarkInput{Title: &title})
	assert.ErrorIs(t, err, db.ErrMalformedID)

	_, err = s.UpdateByID(ctx, uuid.NewString(), models.BookmarkInput{Title: &title})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	b := mustCreate(t, s, "https://a.com", "Alpha", "x")

	found, err := s.DeleteByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, found)

	_, err = s.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	found, err = s.DeleteByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.DeleteByID(ctx, "bad")
	assert.ErrorIs(t, err, db.ErrMalformedID)

	n, err := s.Count(ctx, db.Filter{Tag: "x"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreQueryOrderAndFilter(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "https://a.com", "Alpha")
	b := mustCreate(t, s, "https://b.com", "Beta", "x")
	c := mustCreate(t, s, "https://c.com", "Gamma", "x", "y")

	all, err := s.Query(ctx, db.Filter{}, db.SortNewest, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(all))

	oldest, err := s.Query(ctx, db.Filter{}, db.SortOldest, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(oldest))

	page, err := s.Query(ctx, db.Filter{}, db.SortNewest, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(page))

	tagged, err := s.Query(ctx, db.Filter{Tag: "x"}, db.SortNewest, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID}, ids(tagged))

	n, err := s.Count(ctx, db.Filter{Tag: "x"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = s.Count(ctx, db.Filter{Tag: "unused"})
	require.NoError(t, err)
	assert.Zero(t, n)

	text, err := s.Query(ctx, db.Filter{AnyTerms: []string{"alpha", "gamma"}}, db.SortNewest, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID}, ids(text))

	both, err := s.Query(ctx, db.Filter{Tag: "y", AnyTerms: []string{"com"}}, db.SortNewest, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ids(both))
}

func TestStoreQueryEqualTimestampsOrderByID(t *testing.T) {
	gdb := dbtest.New(t)
	s := db.NewStore(gdb, zap.NewNop().Sugar())
	ctx := context.Background()

	want := make([]string, 0, 4)
	for _, u := range []string{"https://a.com", "https://b.com", "https://c.com", "https://d.com"} {
		want = append(want, mustCreate(t, s, u, u).ID)
	}
	same := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, gdb.Exec("UPDATE bookmarks SET created_at = ?", same).Error)
	sort.Sort(sort.Reverse(sort.StringSlice(want)))

	all, err := s.Query(ctx, db.Filter{}, db.SortNewest, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, want, ids(all))

	paged := make([]string, 0, len(want))
	for skip := 0; skip < len(want)+1; skip++ {
		page, err := s.Query(ctx, db.Filter{}, db.SortNewest, skip, 1)
		require.NoError(t, err)
		paged = append(paged, ids(page)...)
	}
	assert.Equal(t, want, paged)

	first, err := s.Query(ctx, db.Filter{}, db.SortNewest, 0, 3)
	require.NoError(t, err)
	rest, err := s.Query(ctx, db.Filter{}, db.SortNewest, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, want, append(ids(first), ids(rest)...))
}

func TestStoreDuplicateTags(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, models.Bookmark{URL: "https://a.com", Title: "A", Tags: []string{"x", "x"}})
	var dup *db.DuplicateError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, "tags", dup.Field)

	n, err := s.Count(ctx, db.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n, "failed create must roll back")
}

func TestStoreConstraintBackstop(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    models.Bookmark
		field string
	}{
		{name: "bad scheme", in: models.Bookmark{URL: "ftp://a.com", Title: "A"}, field: "url"},
		{name: "empty title", in: models.Bookmark{URL: "https://a.com", Title: " "}, field: "title"},
		{name: "long description", in: models.Bookmark{URL: "https://a.com", Title: "A", Description: strings.Repeat("d", 501)}, field: "description"},
		{name: "uppercase tag", in: models.Bookmark{URL: "https://a.com", Title: "A", Tags: []string{"Go"}}, field: "tags"},
		{name: "too many tags", in: models.Bookmark{URL: "https://a.com", Title: "A", Tags: []string{"a", "b", "c", "d", "e", "f"}}, field: "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.in)
			var ce *db.ConstraintError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}

	n, err := s.Count(ctx, db.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorePing(t *testing.T) {
	assert.NoError(t, dbtest.NewStore(t).Ping(context.Background()))
}

func ids(list []models.Bookmark) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}
