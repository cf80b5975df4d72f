package main

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/pxsearch/internal/config"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
	logpkg "github.com/kailas-cloud/pxsearch/internal/logger"
	"github.com/kailas-cloud/pxsearch/internal/metrics"
	"github.com/kailas-cloud/pxsearch/internal/repository/index"
	"github.com/kailas-cloud/pxsearch/internal/usecase/indexing"
	"github.com/kailas-cloud/pxsearch/internal/usecase/search"
	"github.com/kailas-cloud/pxsearch/internal/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	baseDir    string
	language   string
}

// app wires configuration, logging and the index provider for one command run.
type app struct {
	env      string
	cfg      config.Config
	logger   *zap.Logger
	provider *index.Provider
}

func newApp(opts *globalOptions) (*app, error) {
	env := config.GetEnv()

	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, err
	}
	if opts.baseDir != "" {
		cfg.Index.BaseDir = opts.baseDir
	}
	if opts.language != "" {
		cfg.Index.Language = opts.language
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	metrics.Register()

	provider, err := index.NewProvider(index.Config{
		BaseDir:     cfg.Index.BaseDir,
		Language:    cfg.Index.Language,
		LockTimeout: cfg.Index.LockTimeout(),
		CacheSize:   cfg.Cache.Searchers,
		MaxAge:      cfg.Cache.MaxAge(),
		CacheTotal:  metrics.SearcherCacheTotal,
		Logger:      logger,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	logger.Debug("pxsearch started",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("base_dir", provider.BaseDir()),
		zap.String("language", cfg.Index.Language),
	)
	return &app{env: env, cfg: cfg, logger: logger, provider: provider}, nil
}

func (a *app) indexing() *indexing.Service {
	return indexing.New(writerSource{a.provider})
}

func (a *app) search() *search.Service {
	return search.New(searcherSource{a.provider}, search.Config{
		DefaultOperator:   operatorFromConfig(a.cfg.Search.DefaultOperator),
		DefaultMaxResults: a.cfg.Search.DefaultMaxResults,
		MaxResults:        a.cfg.Search.MaxResults,
	})
}

func operatorFromConfig(s string) operator.Operator {
	op, err := operator.Parse(s)
	if err != nil {
		return operator.Default
	}
	return op
}

func (a *app) Close() error {
	err := a.provider.Close()
	_ = a.logger.Sync()
	return err
}

// writerSource adapts the provider to the indexing service.
type writerSource struct {
	p *index.Provider
}

func (s writerSource) OpenWriter(database, language string, createNew bool) (indexing.IndexWriter, error) {
	w, err := s.p.OpenWriter(database, language, createNew)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s writerSource) Invalidate(database, language string) error {
	return s.p.Invalidate(database, language)
}

// searcherSource adapts the provider to the search service.
type searcherSource struct {
	p *index.Provider
}

func (s searcherSource) Searcher(database, language string) (search.IndexSearcher, func(), error) {
	sr, release, err := s.p.Searcher(database, language)
	if err != nil {
		return nil, nil, err
	}
	return sr, release, nil
}
