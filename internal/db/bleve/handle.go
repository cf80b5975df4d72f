package bleve

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pxsearch/internal/db"
	"github.com/kailas-cloud/pxsearch/internal/domain"
)

var errHandleClosed = errors.New("index handle closed")

// HandleConfig configures OpenHandle.
type HandleConfig struct {
	Path        string
	LockTimeout time.Duration
	Logger      *zap.Logger
}

// Handle is an index directory opened once per process. Writer sessions on it
// run one at a time while its searcher queries concurrently; changes staged
// by a session stay invisible to searches until the session commits.
type Handle struct {
	path     string
	logger   *zap.Logger
	openedAt time.Time
	searcher *Searcher

	mu      sync.RWMutex
	index   bleve.Index // nil until the index exists
	writing bool
	closed  bool
}

// OpenHandle opens the index at cfg.Path. A missing index is not created
// until a writer session starts. A directory held by another process yields
// domain.ErrIndexLocked; a damaged index is an error.
func OpenHandle(cfg HandleConfig) (*Handle, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Handle{path: cfg.Path, logger: logger, openedAt: time.Now()}
	h.searcher = &Searcher{handle: h}

	idx, err := openIndex(cfg.Path, cfg.LockTimeout)
	switch {
	case err == nil:
		h.index = idx
	case errors.Is(err, errIndexMissing):
	default:
		return nil, err
	}
	return h, nil
}

// Path returns the index directory.
func (h *Handle) Path() string { return h.path }

// OpenedAt returns when the handle was opened.
func (h *Handle) OpenedAt() time.Time { return h.openedAt }

// Indexed reports whether the directory holds an index.
func (h *Handle) Indexed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index != nil
}

// Writing reports whether a writer session is running.
func (h *Handle) Writing() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.writing
}

// Searcher returns the handle's searcher.
func (h *Handle) Searcher() *Searcher { return h.searcher }

// OpenWriter starts a writer session. While one runs, further sessions get
// domain.ErrIndexLocked. A missing index is created. With createNew the
// session also removes every committed document, so the old content stays
// searchable until the session commits and comes back on rollback.
func (h *Handle) OpenWriter(createNew bool) (*Writer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, db.Wrap(db.OpOpen, h.path, errHandleClosed)
	}
	if h.writing {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexLocked, h.path)
	}
	if h.index == nil {
		idx, err := createIndex(h.path)
		if err != nil {
			return nil, err
		}
		h.index = idx
		h.logger.Info("index created", zap.String("path", h.path))
	}

	w := newWriter(h, h.index)
	if createNew {
		n, err := w.stageTruncate()
		if err != nil {
			return nil, err
		}
		h.logger.Info("index truncation staged",
			zap.String("path", h.path),
			zap.Int("documents", n),
		)
	}
	h.writing = true
	return w, nil
}

// Close releases the index and its file lock. With a writer session running
// the index is closed when the session ends. Calling Close again is a no-op.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	if h.writing {
		return nil
	}
	return h.closeIndex()
}

// reader returns the index for a search, or nil when there is none yet.
func (h *Handle) reader() (bleve.Index, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed && !h.writing {
		return nil, db.Wrap(db.OpSearch, h.path, errHandleClosed)
	}
	return h.index, nil
}

func (h *Handle) endSession() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.writing = false
	if h.closed {
		return h.closeIndex()
	}
	return nil
}

// closeIndex must be called with h.mu held.
func (h *Handle) closeIndex() error {
	if h.index == nil {
		return nil
	}
	err := h.index.Close()
	h.index = nil
	return db.Wrap(db.OpClose, h.path, err)
}
