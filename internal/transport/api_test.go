package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

func TestBookmarksScenario(t *testing.T) {
	srv := httptest.NewServer(newServer(t, nil).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	cl := resty.New().SetBaseURL(srv.URL + "/api")

	create := func(body string) models.Bookmark {
		resp, err := cl.R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetResult(&models.BookmarkResp{}).
			SetBody(body).
			Post("/bookmarks")
		require.Nil(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())

		got, ok := resp.Result().(*models.BookmarkResp)
		require.True(t, ok)
		return got.Data
	}

	list := func(query map[string]string) *models.BookmarkListResp {
		resp, err := cl.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetResult(&models.BookmarkListResp{}).
			Get("/bookmarks")
		require.Nil(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		got, ok := resp.Result().(*models.BookmarkListResp)
		require.True(t, ok)
		return got
	}

	a := create(`{"url": "https://a.com", "title": "Alpha"}`)
	b := create(`{"url": "https://b.com", "title": "Beta", "tags": ["x"]}`)

	t.Run("newest first", func(t *testing.T) {
		got := list(nil)
		require.Len(t, got.Data, 2)
		assert.Equal(t, b.ID, got.Data[0].ID)
		assert.Equal(t, a.ID, got.Data[1].ID)
	})

	t.Run("tag filter", func(t *testing.T) {
		got := list(map[string]string{"tag": "x"})
		require.Len(t, got.Data, 1)
		assert.Equal(t, b.ID, got.Data[0].ID)
	})

	t.Run("search", func(t *testing.T) {
		got := list(map[string]string{"search": "Alpha"})
		require.Len(t, got.Data, 1)
		assert.Equal(t, a.ID, got.Data[0].ID)
	})

	t.Run("update then get", func(t *testing.T) {
		resp, err := cl.R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(`{"title": "Alpha 2"}`).
			Put("/bookmarks/" + a.ID)
		require.Nil(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		resp, err = cl.R().
			SetContext(ctx).
			SetResult(&models.BookmarkResp{}).
			Get("/bookmarks/" + a.ID)
		require.Nil(t, err)
		got := resp.Result().(*models.BookmarkResp).Data
		assert.Equal(t, "Alpha 2", got.Title)
		assert.Equal(t, a.URL, got.URL)
		assert.Equal(t, a.Tags, got.Tags)
		assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("delete", func(t *testing.T) {
		resp, err := cl.R().SetContext(ctx).Delete("/bookmarks/" + b.ID)
		require.Nil(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())

		resp, err = cl.R().
			SetContext(ctx).
			SetError(&models.ErrorResp{}).
			Get("/bookmarks/" + b.ID)
		require.Nil(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
		assert.Equal(t, "Bookmark not found", resp.Error().(*models.ErrorResp).Message)
	})
}
