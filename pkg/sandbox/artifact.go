package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/rhuss/sandchat/pkg/observability"
)

// removeFile is replaced in tests to simulate cleanup failures.
var removeFile = os.Remove

// artifact is the ephemeral file backing one snippet. Release deletes it
// exactly once.
type artifact struct {
	path string
	once sync.Once
}

// createArtifact writes src to a new file with a random name inside dir.
// O_EXCL guarantees no two invocations share a file.
func createArtifact(dir, ext, src string) (*artifact, error) {
	path := filepath.Join(dir, "snippet-"+uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating artifact: %w", err)
	}

	a := &artifact{path: path}
	_, werr := f.WriteString(src)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		a.Release()
		return nil, fmt.Errorf("writing artifact: %w", err)
	}
	return a, nil
}

func (a *artifact) Path() string {
	return a.path
}

// Release removes the file. Failures are logged and counted, never returned.
func (a *artifact) Release() {
	a.once.Do(func() {
		err := removeFile(a.path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return
		}
		observability.SandboxCleanupFailuresTotal.Inc()
		slog.Warn("failed to remove sandbox artifact", "path", a.path, "error", err)
	})
}
