// Package gitops versions project directories with the git binary so every
// change to project.yaml or immocalc.yaml leaves a commit behind.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author signs the commits immocalc makes.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor is used when the user has not configured git.
var DefaultAuthor = Author{Name: "immocalc", Email: "immocalc@localhost"}

func (a Author) String() string { return fmt.Sprintf("%s <%s>", a.Name, a.Email) }

// Available reports whether a git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Init creates a repository at dir.
func Init(ctx context.Context, dir string) error {
	if _, err := run(ctx, dir, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// Commit stages paths (relative to dir) and commits them. It returns the
// short hash of the new commit. Without changes it returns the current HEAD.
func Commit(ctx context.Context, dir, message string, author Author, paths ...string) (string, error) {
	args := append([]string{"add", "--"}, paths...)
	if len(paths) == 0 {
		args = []string{"add", "-A"}
	}
	if _, err := run(ctx, dir, args...); err != nil {
		return "", err
	}

	if _, err := run(ctx, dir, "diff", "--cached", "--quiet"); err == nil {
		return Head(ctx, dir)
	}

	// git refuses to commit without an identity even when --author is given.
	ident := []string{"-c", "user.name=" + author.Name, "-c", "user.email=" + author.Email}
	commit := append(ident, "commit", "--quiet", "-m", message, "--author", author.String())
	if _, err := run(ctx, dir, commit...); err != nil {
		return "", err
	}
	return Head(ctx, dir)
}

// Head returns the short hash of HEAD.
func Head(ctx context.Context, dir string) (string, error) {
	out, err := run(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Log returns the subjects of the last n commits, newest first.
func Log(ctx context.Context, dir string, n int) ([]string, error) {
	out, err := run(ctx, dir, "log", "--format=%s", fmt.Sprintf("-%d", n))
	if err != nil {
		return nil, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
