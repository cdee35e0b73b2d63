package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrBusinessRequired indicates the request lacks a tenant scope.
	ErrBusinessRequired = errors.New("business scope required")
)
