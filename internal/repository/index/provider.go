package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	bleveidx "github.com/kailas-cloud/pxsearch/internal/db/bleve"
	"github.com/kailas-cloud/pxsearch/internal/domain"
)

// indexDirName separates index directories from the database's table files.
const indexDirName = "_INDEX"

const defaultCacheSize = 16

// Resolver maps the configured base directory to an absolute path.
type Resolver func(dir string) (string, error)

// Config configures a Provider.
type Config struct {
	BaseDir     string
	Language    string
	LockTimeout time.Duration
	// CacheSize bounds the number of open index handles.
	CacheSize int
	// MaxAge is how long an idle handle is reused before it is reopened.
	// Zero disables expiry.
	MaxAge   time.Duration
	Resolver Resolver
	// CacheTotal is a counter vec with label "result" ("hit"/"miss"). Optional.
	CacheTotal *prometheus.CounterVec
	Logger     *zap.Logger
}

type entry struct {
	path    string
	handle  *bleveidx.Handle
	refs    int
	evicted bool
}

// Provider locates index directories under a base directory and keeps one
// open handle per directory. Searchers and the writer session of a directory
// share that handle, so searches keep running against the last commit while
// a session is staging changes.
type Provider struct {
	base        string
	language    string
	lockTimeout time.Duration
	maxAge      time.Duration
	now         func() time.Time

	mu    sync.Mutex
	cache *lru.Cache[string, *entry]
	// retired holds evicted handles that are still leased.
	retired   map[string]*entry
	closeErrs []error

	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewProvider resolves cfg.BaseDir, which must be an existing directory.
func NewProvider(cfg Config) (*Provider, error) {
	resolve := cfg.Resolver
	if resolve == nil {
		resolve = filepath.Abs
	}
	base, err := resolve(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir %q: %w", cfg.BaseDir, err)
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrBaseDirNotFound, base)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}

	p := &Provider{
		base:        base,
		language:    cfg.Language,
		lockTimeout: cfg.LockTimeout,
		maxAge:      cfg.MaxAge,
		now:         time.Now,
		retired:     make(map[string]*entry),
		cacheTotal:  cfg.CacheTotal,
		logger:      logger,
	}
	cache, err := lru.NewWithEvict[string, *entry](size, p.handleEviction)
	if err != nil {
		return nil, fmt.Errorf("create handle cache: %w", err)
	}
	p.cache = cache
	return p, nil
}

// BaseDir returns the resolved base directory.
func (p *Provider) BaseDir() string { return p.base }

// IndexPath returns <base>/<database>/_INDEX/<language>. An empty language
// selects the configured one.
func (p *Provider) IndexPath(database, language string) (string, error) {
	if language == "" {
		language = p.language
	}
	for _, name := range []string{database, language} {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return "", fmt.Errorf("%w: %q", domain.ErrInvalidName, name)
		}
	}
	return filepath.Join(p.base, database, indexDirName, language), nil
}

// Session is a writer session that returns its handle to the provider on Close.
type Session struct {
	*bleveidx.Writer
	release func()
}

// Close ends the session, see bleveidx.Writer.Close.
func (s *Session) Close() error {
	err := s.Writer.Close()
	s.release()
	return err
}

// OpenWriter starts a writer session on the database's index. Searchers of
// the directory keep working during the session and see its changes once it
// commits.
func (p *Provider) OpenWriter(database, language string, createNew bool) (*Session, error) {
	path, err := p.IndexPath(database, language)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	e, _, err := p.acquire(path)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	release := p.lease(e)
	p.mu.Unlock()

	w, err := e.handle.OpenWriter(createNew)
	if err != nil {
		release()
		return nil, err
	}
	return &Session{Writer: w, release: release}, nil
}

// Searcher returns the searcher of the database's index. The caller must
// invoke release when done with it; the handle is closed once it is both
// evicted and released.
func (p *Provider) Searcher(database, language string) (*bleveidx.Searcher, func(), error) {
	path, err := p.IndexPath(database, language)
	if err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	e, hit, err := p.acquire(path)
	if err != nil {
		return nil, nil, err
	}
	if hit {
		p.observe("hit")
	} else {
		p.observe("miss")
	}
	return e.handle.Searcher(), p.lease(e), nil
}

// acquire returns the live handle for path, opening it when needed. An idle
// handle older than MaxAge is reopened. Must be called with p.mu held.
func (p *Provider) acquire(path string) (*entry, bool, error) {
	if e, ok := p.cache.Get(path); ok {
		if e.refs > 0 || p.fresh(e.handle) {
			return e, true, nil
		}
		p.cache.Remove(path)
	}
	if e, ok := p.retired[path]; ok {
		return e, true, nil
	}

	h, err := bleveidx.OpenHandle(bleveidx.HandleConfig{
		Path:        path,
		LockTimeout: p.lockTimeout,
		Logger:      p.logger,
	})
	if err != nil {
		return nil, false, err
	}
	e := &entry{path: path, handle: h}
	p.cache.Add(path, e)
	return e, false, nil
}

// Databases lists the database directories under the base directory.
func (p *Provider) Databases() ([]string, error) {
	entries, err := os.ReadDir(p.base)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// HasIndex reports whether the database has an index, opening it the way a
// search would. A directory held by another process yields ErrIndexLocked.
func (p *Provider) HasIndex(database, language string) (bool, error) {
	s, release, err := p.Searcher(database, language)
	if err != nil {
		return false, err
	}
	defer release()
	return s.Indexed(), nil
}

// Invalidate drops the cached handle so the next call reopens the directory
// from disk. A handle still in use is closed when its last lease is released.
func (p *Provider) Invalidate(database, language string) error {
	path, err := p.IndexPath(database, language)
	if err != nil {
		return err
	}
	p.remove(path)
	return nil
}

// Close evicts every cached handle. Handles still leased are closed on release.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cache.Purge()
	err := errors.Join(p.closeErrs...)
	p.closeErrs = nil
	return err
}

func (p *Provider) fresh(h *bleveidx.Handle) bool {
	return p.maxAge <= 0 || p.now().Sub(h.OpenedAt()) < p.maxAge
}

func (p *Provider) remove(path string) {
	p.mu.Lock()
	p.cache.Remove(path)
	p.mu.Unlock()
}

// lease must be called with p.mu held.
func (p *Provider) lease(e *entry) func() {
	e.refs++
	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			e.refs--
			if e.evicted && e.refs == 0 {
				if p.retired[e.path] == e {
					delete(p.retired, e.path)
				}
				p.closeEntry(e)
			}
		})
	}
}

// handleEviction runs inside cache calls, which always happen with p.mu held.
func (p *Provider) handleEviction(path string, e *entry) {
	e.evicted = true
	if e.refs == 0 {
		p.closeEntry(e)
		return
	}
	p.retired[path] = e
}

func (p *Provider) closeEntry(e *entry) {
	if err := e.handle.Close(); err != nil {
		p.logger.Warn("close index handle failed",
			zap.String("path", e.path),
			zap.Error(err),
		)
		p.closeErrs = append(p.closeErrs, err)
	}
}

func (p *Provider) observe(result string) {
	if p.cacheTotal != nil {
		p.cacheTotal.WithLabelValues(result).Inc()
	}
}
