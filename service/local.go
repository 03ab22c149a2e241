package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalStager keeps uploads as files under a directory.
type LocalStager struct {
	dir string
}

// NewLocalStager stages under dir, or under the system temp dir when dir is
// empty.
func NewLocalStager(dir string) (*LocalStager, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &LocalStager{dir: dir}, nil
}

func (s *LocalStager) Stage(ctx context.Context, _ string, r io.Reader, size int64) (Staged, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := objectKey(time.Now())
	p := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("short write: %d of %d bytes", n, size)
	}
	if err != nil {
		os.Remove(p)
		return nil, fmt.Errorf("write staged file: %w", err)
	}

	return &localFile{key: key, path: p, size: n}, nil
}

type localFile struct {
	key  string
	path string
	size int64
}

func (f *localFile) Key() string  { return f.key }
func (f *localFile) Size() int64  { return f.size }
func (f *localFile) Path() string { return f.path }

func (f *localFile) Open(ctx context.Context) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(f.path)
}

func (f *localFile) Remove(context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}
