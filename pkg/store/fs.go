package store

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/hack-pad/hackpadfs"
)

// FS adapts any hackpadfs filesystem into a FileStore. Hosts pick the
// backend: mem.NewFS for in-browser or test use, an os.NewFS subtree for
// local workspaces.
type FS struct {
	fsys hackpadfs.FS
}

// NewFS wraps fsys as a FileStore.
func NewFS(fsys hackpadfs.FS) *FS {
	return &FS{fsys: fsys}
}

func (f *FS) ReadFile(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleaned, err := cleanPath(name)
	if err != nil {
		return "", err
	}
	data, err := hackpadfs.ReadFile(f.fsys, cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

func (f *FS) WriteFile(ctx context.Context, name, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleaned, err := cleanPath(name)
	if err != nil {
		return err
	}
	if dir := path.Dir(cleaned); dir != "." {
		if err := hackpadfs.MkdirAll(f.fsys, dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
	}
	if err := hackpadfs.WriteFullFile(f.fsys, cleaned, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func cleanPath(name string) (string, error) {
	cleaned := path.Clean(name)
	if !fs.ValidPath(cleaned) {
		return "", fmt.Errorf("invalid path %q", name)
	}
	return cleaned, nil
}
