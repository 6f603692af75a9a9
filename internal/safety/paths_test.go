package safety_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/petasbytes/go-astra/internal/safety"
)

func TestValidateRelPath_BasicRejections(t *testing.T) {
	root := t.TempDir()

	// Absolute path should be rejected (OS-independent)
	abs, err := filepath.Abs(".")
	if err != nil {
		t.Skipf("cannot compute absolute path: %v", err)
	}
	if _, err := safety.ValidateRelPath(root, abs); err == nil {
		t.Fatal("expected error for absolute path")
	}

	// Parent traversal should be rejected
	if _, err := safety.ValidateRelPath(root, "../../x"); err == nil {
		t.Fatal("expected error for parent traversal")
	}

	if _, err := safety.ValidateRelPath(root, "."); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestValidateRelPath_HiddenDenied(t *testing.T) {
	root := t.TempDir()

	cases := []string{".chat_log.json.tmp-123", "sub/.hidden", ".git/HEAD"}
	for _, rel := range cases {
		t.Run(rel, func(t *testing.T) {
			_, err := safety.ValidateRelPath(root, rel)
			var pe safety.PathError
			if !errors.As(err, &pe) {
				t.Fatalf("expected PathError, got %T: %v", err, err)
			}
			if pe.Code != "ERR_DENIED_HIDDEN" {
				t.Fatalf("unexpected code: %s", pe.Code)
			}
		})
	}
}

func TestValidateRelPath_SymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(root, "out")
	if runtime.GOOS == "windows" {
		t.Skip("symlink test skipped on Windows")
	}
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlink not allowed on this FS: %v", err)
	}

	target := "out/escape.txt"
	if _, err := safety.ValidateRelPath(root, target); err == nil {
		t.Fatalf("expected reject for symlink escape: %s", target)
	} else if !strings.Contains(err.Error(), "ERR_PATH_OUTSIDE_ROOT") {
		t.Fatalf("expected ERR_PATH_OUTSIDE_ROOT, got %v", err)
	}
}

func TestValidateRelPath_AllowNormal(t *testing.T) {
	root, err := safety.ResolveRoot(t.TempDir())
	if err != nil {
		t.Fatalf("resolve root: %v", err)
	}

	p, err := safety.ValidateRelPath(root, "chat_log.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != filepath.Join(root, "chat_log.json") {
		t.Fatalf("resolved path %q not directly under root %q", p, root)
	}
}
