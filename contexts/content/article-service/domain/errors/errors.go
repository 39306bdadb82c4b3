package errors

import "errors"

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrTitleRequired   = errors.New("title is required")
)
