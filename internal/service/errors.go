package service

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateName    = errors.New("name already in use")
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
)
