package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/service"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/validation"
)

const (
	healthTimeout = 2 * time.Second

	healthOK       = "ok"
	healthDegraded = "degraded"
)

func (s *HTTPServer) BookmarkList(c echo.Context) error {
	res, err := s.service.List(c.Request().Context(), service.ListParams{
		Tag:    c.QueryParam("tag"),
		Search: c.QueryParam("search"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.BookmarkListResp{
		Success: true,
		Count:   len(res.Items),
		Total:   res.Total,
		Page:    res.Page,
		Pages:   res.Pages(),
		Data:    res.Items,
	})
}

func (s *HTTPServer) BookmarkGet(c echo.Context) error {
	b, err := s.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.BookmarkResp{Success: true, Data: b})
}

func (s *HTTPServer) BookmarkCreate(c echo.Context) error {
	in := models.BookmarkInput{}
	if err := bindBody(c, &in); err != nil {
		return err
	}

	b, err := s.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.BookmarkResp{Success: true, Data: b})
}

func (s *HTTPServer) BookmarkUpdate(c echo.Context) error {
	in := models.BookmarkInput{}
	if err := bindBody(c, &in); err != nil {
		return err
	}

	b, err := s.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.BookmarkResp{Success: true, Data: b})
}

func (s *HTTPServer) BookmarkDelete(c echo.Context) error {
	id := c.Param("id")
	if err := s.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.DeleteResp{
		Success: true,
		Message: "Bookmark deleted",
		ID:      id,
	})
}

func (s *HTTPServer) FetchTitle(c echo.Context) error {
	url := strings.TrimSpace(c.QueryParam("url"))
	if url == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url query param required")
	}

	title := s.service.FetchTitle(c.Request().Context(), url)
	return c.JSON(http.StatusOK, models.TitleResp{Success: true, Title: title})
}

func (s *HTTPServer) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	resp := models.HealthResp{
		Status:    healthOK,
		DB:        s.cfg.DBDriver,
		Timestamp: time.Now().UTC(),
	}
	if err := s.service.Ping(ctx); err != nil {
		s.logger.Warnw("health check: store ping failed", "error", err)
		resp.Status = healthDegraded
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func bindBody(c echo.Context, v interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		ute := &json.UnmarshalTypeError{}
		if errors.As(err, &ute) {
			if v, ok := validation.FromTypeError(ute); ok {
				return v
			}
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	return nil
}

// queryInt reads an integer query param; missing or unparsable values read as zero.
func queryInt(c echo.Context, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil {
		return 0
	}
	return v
}
