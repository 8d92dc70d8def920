package transport

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/validation"
)

const (
	msgValidationFailed = "Validation failed"
	msgNotFound         = "Bookmark not found"
	msgInternal         = "Internal Server Error"
)

func (s *HTTPServer) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := s.errorResponse(err, c)
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("request failed", "status", status, "error", fmt.Sprintf("%+v", err))
	} else {
		s.logger.Debugw("request rejected", "status", status, "message", body.Message)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		s.logger.Errorw("write error response", "error", werr)
	}
}

func (s *HTTPServer) errorResponse(err error, c echo.Context) (int, models.ErrorResp) {
	var (
		violations validation.Violations
		constraint *db.ConstraintError
		duplicate  *db.DuplicateError
		httpErr    *echo.HTTPError
	)

	switch {
	case errors.As(err, &violations):
		return http.StatusBadRequest, failure(msgValidationFailed, violations)
	case errors.As(err, &constraint):
		return http.StatusBadRequest, failure(msgValidationFailed, []models.FieldError{{Field: constraint.Field, Msg: constraint.Msg}})
	case errors.As(err, &duplicate):
		return http.StatusConflict, failure(fmt.Sprintf("Duplicate value for %q", duplicate.Field), nil)
	case errors.Is(err, db.ErrMalformedID):
		return http.StatusBadRequest, failure(fmt.Sprintf("Invalid ID format: %q", c.Param("id")), nil)
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, failure(msgNotFound, nil)
	case errors.As(err, &httpErr):
		if httpErr.Code == http.StatusNotFound || httpErr.Code == http.StatusMethodNotAllowed {
			req := c.Request()
			return http.StatusNotFound, failure(fmt.Sprintf("Route not found: %s %s", req.Method, req.URL.RequestURI()), nil)
		}
		return httpErr.Code, failure(fmt.Sprint(httpErr.Message), nil)
	}

	resp := failure(msgInternal, nil)
	if !s.cfg.IsProduction() {
		resp.Stack = fmt.Sprintf("%+v", err)
	}
	return http.StatusInternalServerError, resp
}

func failure(msg string, fields []models.FieldError) models.ErrorResp {
	return models.ErrorResp{
		Success: false,
		Message: msg,
		Errors:  fields,
	}
}
