package fsops

import (
	"io/fs"
	"os"
)

// FakeDeleter implements FS for testing.
// Reads go to the real filesystem, deletes are recorded and never performed.
// Paths listed in Fail return the mapped error instead of being recorded as removed.
type FakeDeleter struct {
	Calls []string
	Fail  map[string]error
}

func (f *FakeDeleter) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (f *FakeDeleter) Lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

func (f *FakeDeleter) RemoveAll(path string) error {
	f.Calls = append(f.Calls, "rmall:"+path)
	return f.Fail[path]
}
