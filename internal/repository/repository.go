// Package repository declares the persistence ports of the supplier registry.
// The postgres subpackage implements them; business rules stay in service.
package repository

import "errors"

// ErrDuplicate is returned when a write violates a unique constraint. The
// constraint name is appended to the message.
var ErrDuplicate = errors.New("duplicate key")

// PageQuery is an offset window over an ordered listing.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult carries one window plus the total matching rows.
type PageResult[T any] struct {
	Items []T
	Total int
}
