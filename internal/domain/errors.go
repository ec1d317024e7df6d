// Package domain holds the core types and collaborator interfaces shared by
// every subsystem. It has no dependencies on the other internal packages.
package domain

import "errors"

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")
