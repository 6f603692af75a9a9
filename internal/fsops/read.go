package fsops

import (
	"fmt"
	"os"

	"github.com/petasbytes/go-astra/internal/safety"
)

// ReadFile reads a file addressed by a relative path under root.
// A missing file is reported with an error matching os.ErrNotExist.
func ReadFile(root, relPath string) (string, error) {
	absRoot, err := safety.ResolveRoot(root)
	if err != nil {
		return "", err
	}
	absPath, err := safety.ValidateRelPath(absRoot, relPath)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", safety.PathError{Code: "ERR_NOT_A_FILE", Message: fmt.Sprintf("%s is a directory", relPath)}
	}

	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
