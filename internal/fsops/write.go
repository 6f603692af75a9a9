package fsops

import (
	"os"
	"path/filepath"

	"github.com/petasbytes/go-astra/internal/safety"
)

// WriteFile replaces the file at relPath under root with content.
// The bytes go to a hidden temp file in the same directory which is then
// renamed over the target, so readers see either the old or the new file.
func WriteFile(root, relPath, content string) error {
	absRoot, err := safety.ResolveRoot(root)
	if err != nil {
		return err
	}
	absPath, err := safety.ValidateRelPath(absRoot, relPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(absPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	// Removing after a successful rename is a no-op error we ignore.
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, absPath)
}
