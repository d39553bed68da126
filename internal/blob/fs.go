// Package blob persists audio assets and hands back durable URLs.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	maxAttempts = 3
	retryDelay  = 100 * time.Millisecond
)

// FSStore writes assets under a local directory served at urlPrefix.
// The Store interface seam lets an object-storage backend replace it
// without touching callers.
type FSStore struct {
	dir       string
	urlPrefix string
}

// NewFSStore creates the target directory if needed.
func NewFSStore(dir, urlPrefix string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &FSStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// Save writes data under a sanitized name and returns its URL. Writes
// are retried a bounded number of times before failing.
func (s *FSStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	name = sanitizeFilename(name)
	path := filepath.Join(s.dir, name)

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = os.WriteFile(path, data, 0o644); err == nil {
			return s.urlPrefix + "/" + name, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("store %s: %w", name, ctx.Err())
		case <-time.After(time.Duration(attempt) * retryDelay):
		}
	}
	return "", fmt.Errorf("store %s after %d attempts: %w", name, maxAttempts, err)
}

// Dir returns the backing directory, for wiring the media file server.
func (s *FSStore) Dir() string {
	return s.dir
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
	)
	name = replacer.Replace(name)
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}
