package entity

import "errors"

var (
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrVersionMismatch = errors.New("entity version mismatch")
	ErrInvalidField    = errors.New("invalid entity field")
)
