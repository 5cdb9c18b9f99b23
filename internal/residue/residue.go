// Package residue deletes filesystem leftovers that package removal does
// not touch: application state under /opt, per-user configuration, docker
// data roots.
package residue

import (
	"os"
	"path/filepath"

	apperrors "napclean/internal/errors"
)

// Remover removes residual path trees.
type Remover struct{}

// NewRemover constructs a Remover.
func NewRemover() *Remover {
	return &Remover{}
}

// RemoveAll deletes the path tree recursively. An already-absent path is a
// success, so repeated runs stay idempotent. Relative paths and the
// filesystem root are refused.
func (r *Remover) RemoveAll(path string) error {
	if !filepath.IsAbs(path) {
		return residueError("residue.removeAll", "residual path must be absolute", nil, path)
	}
	if filepath.Clean(path) == "/" {
		return residueError("residue.removeAll", "refusing to delete filesystem root", nil, path)
	}

	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return nil
	}

	if err := os.RemoveAll(path); err != nil {
		return residueError("residue.removeAll", "failed to delete residual path", err, path)
	}
	return nil
}

func residueError(operation, message string, err error, path string) *apperrors.AppError {
	return apperrors.FilesystemError(apperrors.CodeFilesystemGeneric, message, err).
		WithModule("residue").
		WithOperation(operation).
		WithField("path", path)
}
