package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hookclip/internal/services"
)

// Workspace is a job-scoped directory holding staged engine files.
type Workspace struct {
	dir string
}

func newWorkspace(root, jobID string) (*Workspace, error) {
	if err := validName(jobID); err != nil {
		return nil, services.Wrap(services.ErrValidation, "engine", "open workspace", "invalid job id", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrEncoding, "engine", "open workspace", "create work root", err)
	}
	dir := filepath.Join(root, jobID)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, services.Wrap(services.ErrEncoding, "engine", "open workspace", "create job directory", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the absolute workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the location of a staged file.
func (w *Workspace) Path(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(w.dir, name), nil
}

// Write stages data under name, replacing any previous content.
func (w *Workspace) Write(name string, data []byte) error {
	path, err := w.Path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	return nil
}

// Read returns the content of a staged file.
func (w *Workspace) Read(name string) ([]byte, error) {
	path, err := w.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether name has been staged.
func (w *Workspace) Exists(name string) bool {
	path, err := w.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	if w == nil || w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.dir = ""
	return err
}

func validName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return errors.New("empty file name")
	case name == "." || name == "..":
		return fmt.Errorf("invalid file name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("file name %q must not contain path separators", name)
	}
	return nil
}
