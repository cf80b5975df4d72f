package bleve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/kailas-cloud/pxsearch/internal/db"
	"github.com/kailas-cloud/pxsearch/internal/domain"
)

// DefaultLockTimeout bounds how long opening waits for the index file lock.
const DefaultLockTimeout = 250 * time.Millisecond

// openIndex opens an existing index for reading and writing. The engine's
// root file lock is exclusive, so a second process opening the same directory
// waits at most lockTimeout and then gets domain.ErrIndexLocked.
func openIndex(path string, lockTimeout time.Duration) (bleve.Index, error) {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	idx, err := bleve.OpenUsing(path, map[string]interface{}{
		"bolt_timeout": lockTimeout.String(),
	})
	switch {
	case err == nil:
		return idx, nil
	case isLocked(err):
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexLocked, path)
	case isMissing(path, err):
		return nil, errIndexMissing
	default:
		return nil, db.Wrap(db.OpOpen, path, err)
	}
}

// errIndexMissing marks a directory that holds no index yet.
var errIndexMissing = errors.New("index missing")

// createIndex creates an index at path, which must be absent or an empty directory.
func createIndex(path string) (bleve.Index, error) {
	// os.Remove refuses non-empty directories, so nothing indexed is lost
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, db.Wrap(db.OpCreate, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, db.Wrap(db.OpCreate, path, err)
	}

	idx, err := bleve.New(path, BuildIndexMapping())
	if err != nil {
		return nil, db.Wrap(db.OpCreate, path, err)
	}
	return idx, nil
}

func isLocked(err error) bool {
	if errors.Is(err, bolt.ErrTimeout) {
		return true
	}
	// scorch does not always wrap the bolt error
	return strings.Contains(err.Error(), bolt.ErrTimeout.Error())
}

// isMissing reports an absent directory or an empty one. A directory with
// content but no index metadata is a damaged index, not a missing one.
func isMissing(path string, err error) bool {
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return true
	}
	if !errors.Is(err, bleve.ErrorIndexMetaMissing) {
		return false
	}
	entries, readErr := os.ReadDir(path)
	return readErr == nil && len(entries) == 0
}
