package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

const (
	msgURLRequired   = "URL is required"
	msgURLInvalid    = "Must be a valid URL starting with http:// or https://"
	msgURLTooLong    = "URL too long (max 2000 chars)"
	msgTitleRequired = "Title is required"
	msgTitleTooLong  = "Title max 200 characters"
	msgDescTooLong   = "Description max 500 characters"
	msgTagsTooMany   = "Tags must be an array of up to 5 items"
	msgTagTooLong    = "Each tag max 30 characters"
	msgTagLowercase  = "Tags must be lowercase"
)

var httpURLPattern = regexp.MustCompile(`^https?://.+`)

// Violations is the list of field problems found in one input. It is returned as an error so
// callers can pass it through unchanged, but it never signals a fault.
type Violations []models.FieldError

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type rules struct {
	URL         *string  `json:"url" validate:"omitempty,max=2000,httpurl"`
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Tags        []string `json:"tags" validate:"max=5,dive,max=30,lowercased"`
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return httpURLPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("lowercased", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == strings.ToLower(s)
	})
	return &Validator{validate: v}
}

// Validate checks in against the bookmark field rules for the given mode and returns the
// normalized input. All violations are collected; the returned input is only meaningful when
// the error is nil.
func (v *Validator) Validate(in models.BookmarkInput, mode Mode) (models.BookmarkInput, error) {
	r := rules{
		URL:         trimmed(in.URL),
		Title:       trimmed(in.Title),
		Description: trimmed(in.Description),
	}
	if in.Tags != nil {
		r.Tags = make([]string, len(in.Tags))
		for i, t := range in.Tags {
			r.Tags[i] = strings.TrimSpace(t)
		}
	}

	var out Violations

	switch mode {
	case ModeCreate:
		if r.URL == nil || *r.URL == "" {
			out = append(out, models.FieldError{Field: "url", Msg: msgURLRequired})
			r.URL = nil
		}
		if r.Title != nil && *r.Title == "" {
			r.Title = nil
		}
	case ModeUpdate:
		if r.URL != nil && *r.URL == "" {
			out = append(out, models.FieldError{Field: "url", Msg: msgURLInvalid})
			r.URL = nil
		}
		if r.Title != nil && *r.Title == "" {
			out = append(out, models.FieldError{Field: "title", Msg: msgTitleRequired})
			r.Title = nil
		}
	}

	if err := v.validate.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return models.BookmarkInput{}, err
		}
		for _, fe := range verrs {
			out = appendUnique(out, toFieldError(fe))
		}
	}

	if len(out) > 0 {
		return models.BookmarkInput{}, out
	}

	res := models.BookmarkInput{
		URL:         r.URL,
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Tags != nil {
		res.Tags = models.NormalizeTags(r.Tags)
	}
	if mode == ModeCreate {
		if res.Description == nil {
			res.Description = models.StringPtr("")
		}
		if res.Tags == nil {
			res.Tags = []string{}
		}
	}
	return res, nil
}

func toFieldError(fe validator.FieldError) models.FieldError {
	field := fe.Field()
	element := false
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
		element = true
	}

	msg := fe.Tag()
	switch field {
	case "url":
		msg = msgURLInvalid
		if fe.Tag() == "max" {
			msg = msgURLTooLong
		}
	case "title":
		msg = msgTitleTooLong
	case "description":
		msg = msgDescTooLong
	case "tags":
		switch {
		case !element:
			msg = msgTagsTooMany
		case fe.Tag() == "lowercased":
			msg = msgTagLowercase
		default:
			msg = msgTagTooLong
		}
	}
	return models.FieldError{Field: field, Msg: msg}
}

func appendUnique(list Violations, fe models.FieldError) Violations {
	for _, existing := range list {
		if existing == fe {
			return list
		}
	}
	return append(list, fe)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
