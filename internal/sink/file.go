package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"altiprofile/internal/profile"
	"altiprofile/pkg/logger"
)

// FileSink writes artifacts into a local directory.
type FileSink struct {
	Dir string
}

// NewFileSink creates a sink writing into dir. The directory is created on
// first write.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Write stores content as Dir/name. Writes to the same path are serialized and
// the file is replaced atomically.
func (s *FileSink) Write(ctx context.Context, name string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid artifact name: %q", name)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", &profile.IOError{Op: "create directory", Path: s.Dir, Err: err}
	}

	target := filepath.Join(s.Dir, name)
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}

	unlock := locks.lock(abs)
	defer unlock()

	if err := writeAtomic(target, content); err != nil {
		return "", err
	}

	logger.Logger.WithFields(map[string]interface{}{
		"path":  target,
		"bytes": len(content),
	}).Debug("Wrote artifact")

	return target, nil
}

func writeAtomic(target string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*.tmp")
	if err != nil {
		return &profile.IOError{Op: "create", Path: target, Err: err}
	}
	tmpName := tmp.Name()

	cleanup := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &profile.IOError{Op: op, Path: target, Err: err}
	}

	if _, err := tmp.Write(content); err != nil {
		return cleanup("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &profile.IOError{Op: "close", Path: target, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &profile.IOError{Op: "chmod", Path: target, Err: err}
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return &profile.IOError{Op: "rename", Path: target, Err: err}
	}

	return nil
}

// pathLocks hands out one mutex per output path. Entries are dropped once no
// writer holds or waits on them.
type pathLocks struct {
	mu    sync.Mutex
	paths map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

var locks = &pathLocks{paths: make(map[string]*pathLock)}

func (l *pathLocks) lock(path string) func() {
	l.mu.Lock()
	pl, ok := l.paths[path]
	if !ok {
		pl = &pathLock{}
		l.paths[path] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()

	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.paths, path)
		}
		l.mu.Unlock()
	}
}
