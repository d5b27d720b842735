package fsops

import (
	"io/fs"
	"os"
)

// OS implements FS using real os package calls
type OS struct{}

func (OS) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (OS) Lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

func (OS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
