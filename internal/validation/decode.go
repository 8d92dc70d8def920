package validation

import (
	"encoding/json"
	"reflect"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

const (
	msgTagNotString   = "Each tag must be a string"
	msgTitleNotString = "Title must be a string"
	msgDescNotString  = "Description must be a string"
)

// FromTypeError turns a JSON type mismatch on a bookmark field into a field violation.
// It reports false for fields the bookmark input does not have.
func FromTypeError(err *json.UnmarshalTypeError) (Violations, bool) {
	if err == nil || err.Type == nil {
		return nil, false
	}

	var msg string
	switch err.Field {
	case "url":
		msg = msgURLInvalid
	case "title":
		msg = msgTitleNotString
	case "description":
		msg = msgDescNotString
	case "tags":
		if err.Type.Kind() == reflect.Slice {
			msg = msgTagsTooMany
		} else {
			msg = msgTagNotString
		}
	default:
		return nil, false
	}
	return Violations{models.FieldError{Field: err.Field, Msg: msg}}, true
}
