package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrProtectedPath = errors.New("protected path")
	ErrOutsideRoot   = errors.New("outside search root")
	ErrIsRoot        = errors.New("refusing to delete the search root")
	ErrTraversal     = errors.New("path traversal detected")
	ErrSymlinkEscape = errors.New("symlink escape detected")
)

// Validator enforces the safety contract for all delete operations
type Validator struct {
	Root           string
	ProtectedPaths []string
}

// NewValidator creates a validator for matches found beneath root, with optional additional protected paths
func NewValidator(root string, extraProtected []string) *Validator {
	r, err := NormalizePath(root)
	if err != nil {
		r = filepath.Clean(root)
	}
	return &Validator{
		Root:           r,
		ProtectedPaths: defaultProtected(extraProtected),
	}
}

// ValidateDeleteTarget is the single-source-of-truth for delete authorization
// Returns typed error on safety violation
func (v *Validator) ValidateDeleteTarget(path string) error {
	// Detect path traversal in raw input before cleaning hides it
	if DetectTraversal(path) {
		return ErrTraversal
	}

	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	if v.isProtected(p) {
		return ErrProtectedPath
	}

	if p == v.Root {
		return ErrIsRoot
	}
	if !hasPathPrefix(p, v.Root) {
		return ErrOutsideRoot
	}

	// The entry itself may be a symlink pointing anywhere, removing it only
	// unlinks it. Its parent directory must still resolve inside the root.
	escaped, err := DetectSymlinkEscape(filepath.Dir(p), v.Root)
	if err != nil {
		// A vanished parent is reported by the removal's existence check
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if escaped {
		return ErrSymlinkEscape
	}

	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// DetectTraversal blocks any ".." segment in raw input
func DetectTraversal(raw string) bool {
	parts := strings.Split(filepath.ToSlash(raw), "/")
	for _, p := range parts {
		if p == ".." {
			return true
		}
	}
	return false
}

// DetectSymlinkEscape resolves symlinks in dir and in root and reports whether
// the resolved dir lies outside the resolved root
func DetectSymlinkEscape(dir, root string) (bool, error) {
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false, err
	}
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return false, err
	}
	return !hasPathPrefix(filepath.Clean(resolvedDir), filepath.Clean(resolvedRoot)), nil
}

// IsProtectedPath checks if path is, or lies beneath, a protected system path
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)

	// Hard block: "/" exact
	if p == string(os.PathSeparator) {
		return true
	}

	for _, prot := range protected {
		prot = filepath.Clean(prot)
		// "/" protects only itself, everything else protects its subtree
		if prot == string(os.PathSeparator) {
			continue
		}
		if hasPathPrefix(p, prot) {
			return true
		}
	}
	return false
}

// isProtected applies IsProtectedPath, except that a system path containing
// the search root protects only itself. Configured paths always protect their subtree.
func (v *Validator) isProtected(p string) bool {
	if p == string(os.PathSeparator) {
		return true
	}
	for _, prot := range v.ProtectedPaths {
		prot = filepath.Clean(prot)
		if p == prot {
			return true
		}
		if isSystemPath(prot) && hasPathPrefix(v.Root, prot) {
			continue
		}
		if IsProtectedPath(p, []string{prot}) {
			return true
		}
	}
	return false
}

func isSystemPath(path string) bool {
	for _, sys := range systemPaths {
		if path == sys {
			return true
		}
	}
	return false
}

// hasPathPrefix checks if path equals prefix or lies beneath it
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if prefix == string(os.PathSeparator) {
		return strings.HasPrefix(path, prefix)
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// defaultProtected returns the base set of protected paths plus any extras
func defaultProtected(extra []string) []string {
	base := append([]string(nil), systemPaths...)
	return append(base, extra...)
}

var systemPaths = []string{
	"/",
	"/etc",
	"/bin",
	"/usr",
	"/boot",
	"/lib",
	"/lib64",
	"/sbin",
	"/proc",
	"/sys",
	"/dev",
}
