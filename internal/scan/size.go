package scan

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sarthakgaur/del-files/internal/fsops"
)

type statLister interface {
	fsops.Lister
	fsops.Statter
}

// Size returns the number of bytes held by path.
// A non-directory reports its own length. A directory reports the sum of the
// lengths of every non-directory entry beneath it, enumerated breadth-first.
// Symlinks count as the link itself and are never followed.
func Size(ctx context.Context, fsys statLister, path string) (int64, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	dirs := []string{path}
	for next := 0; next < len(dirs); next++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		entries, err := fsys.ReadDir(dirs[next])
		if err != nil {
			return 0, fmt.Errorf("list %s: %w", dirs[next], err)
		}

		for _, entry := range entries {
			child := filepath.Join(dirs[next], entry.Name())
			if entry.IsDir() {
				dirs = append(dirs, child)
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return 0, fmt.Errorf("stat %s: %w", child, err)
			}
			total += info.Size()
		}
	}

	return total, nil
}
