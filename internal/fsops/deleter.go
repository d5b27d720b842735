package fsops

import "io/fs"

// Deleter abstracts filesystem delete operations
// Enables mocking in tests to prove declined and dry-run items are never deleted
type Deleter interface {
	// RemoveAll removes path and everything beneath it. A symlink is unlinked.
	RemoveAll(path string) error
}

// Lister lists the immediate children of a directory in listing order
type Lister interface {
	ReadDir(path string) ([]fs.DirEntry, error)
}

// Statter reports size and type of a path without following a final symlink
type Statter interface {
	Lstat(path string) (fs.FileInfo, error)
}

// FS is the full set of filesystem primitives the traversal and removal stages consume
type FS interface {
	Lister
	Statter
	Deleter
}
