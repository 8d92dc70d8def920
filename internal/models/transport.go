package models

import "time"

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type BookmarkResp struct {
	Success bool     `json:"success"`
	Data    Bookmark `json:"data"`
}

type BookmarkListResp struct {
	Success bool       `json:"success"`
	Count   int        `json:"count"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	Pages   int        `json:"pages"`
	Data    []Bookmark `json:"data"`
}

type DeleteResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

type TitleResp struct {
	Success bool   `json:"success"`
	Title   string `json:"title"`
}

type HealthResp struct {
	Status    string    `json:"status"`
	DB        string    `json:"db"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResp struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}
