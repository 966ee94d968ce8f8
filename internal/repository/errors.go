package repository

import "errors"

// Sentinel errors shared by all store implementations. Services translate
// these into their own domain-specific failures.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)
