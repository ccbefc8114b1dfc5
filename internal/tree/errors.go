package tree

import "errors"

var (
	// ErrFileNameMissing is returned when a path has no final component to
	// use as a leaf name (".", "/", "..").
	ErrFileNameMissing = errors.New("path has no file name")

	// ErrEmptyCollection is returned when a view is built over a tree with
	// nothing to browse.
	ErrEmptyCollection = errors.New("nothing to browse")
)
