// Package apperr holds the error kinds shared by the catalog services and the HTTP layer.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCycle           = errors.New("parent cycle")
)
