package service

import "errors"

var (
	ErrEmptyComment     = errors.New("progress comment must not be empty")
	ErrInvalidProgress  = errors.New("progress must be between 0 and 100")
	ErrProjectNotFound  = errors.New("project not found")
	ErrForbidden        = errors.New("project not visible to user")
	ErrInvalidMediaType = errors.New("media type must be image or video")
)
