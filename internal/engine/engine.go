// Package engine assembles the package store, holder repository, app-op
// store and role manager from configuration.
package engine

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/appops"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/audit"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/catalog"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/config"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/grouping"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/livedata"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/logging"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/metrics"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/pkgstore"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/role"
)

// Options override configuration values. Empty fields keep the config.
type Options struct {
	ConfigPath  string
	CatalogPath string
	JournalPath string
	LogLevel    string
	// Logger, when set, is used instead of building one from LogLevel.
	Logger *zap.Logger
}

// Engine is the assembled runtime.
type Engine struct {
	Config      *config.Config
	ConfigHash  string
	CatalogPath string
	JournalPath string

	Log     *zap.Logger
	Metrics *metrics.Metrics
	Store   *pkgstore.Store
	Repo    *livedata.Repository
	AppOps  *appops.Store
	Roles   *role.Manager

	journal *audit.Log
}

// New loads configuration and catalog, replays the journal and wires
// every component.
func New(opts Options) (*Engine, error) {
	cfg, hash, err := config.LoadConfigWithHash(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		level := cfg.LogLevel
		if opts.LogLevel != "" {
			level = opts.LogLevel
		}
		log, err = logging.New(level)
		if err != nil {
			return nil, err
		}
	}

	catalogPath := config.ExpandHome(cfg.Catalog)
	if opts.CatalogPath != "" {
		catalogPath = opts.CatalogPath
	}
	journalPath := config.ExpandHome(cfg.Journal)
	if opts.JournalPath != "" {
		journalPath = opts.JournalPath
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if _, err := os.Stat(journalPath); err == nil {
		if res := audit.Verify(journalPath); !res.Valid {
			log.Warn("journal hash chain broken, replaying anyway",
				zap.String("journal", journalPath),
				zap.Int("line", res.ErrorLine),
				zap.String("error", res.Error),
			)
		}
	}
	entries, err := audit.Read(journalPath, audit.Filter{})
	if err != nil {
		return nil, fmt.Errorf("replay journal: %w", err)
	}
	journal, err := audit.Open(journalPath)
	if err != nil {
		return nil, err
	}
	journal.SetConfigHash(hash)

	reg, err := role.FromConfig(cfg.Roles)
	if err != nil {
		journal.Close()
		return nil, err
	}

	m := metrics.New()
	store := pkgstore.New(cat, log.Named("pkgstore"), m)
	ops := appops.NewStore(journal, log.Named("appops"), m)
	ops.Restore(entries)

	device := cfg.Device
	rctx := &role.Context{
		Telephony:     device,
		Telecom:       device,
		Resources:     device,
		Packages:      store,
		AppOps:        ops,
		FileEncrypted: device.FileEncrypted,
		SDK:           device.SDK,
	}
	roles := role.NewManager(reg, rctx, journal, log.Named("role"), m)
	roles.Restore(entries)

	log.Debug("engine ready",
		zap.String("config_hash", hash),
		zap.String("catalog", catalogPath),
		zap.String("catalog_hash", cat.Hash()),
		zap.String("journal", journalPath),
		zap.Int("journal_entries", len(entries)),
	)

	return &Engine{
		Config:      cfg,
		ConfigHash:  hash,
		CatalogPath: catalogPath,
		JournalPath: journalPath,
		Log:         log,
		Metrics:     m,
		Store:       store,
		Repo:        livedata.NewRepository(store, log.Named("livedata"), m),
		AppOps:      ops,
		Roles:       roles,
		journal:     journal,
	}, nil
}

// Groups computes the permission groups of a package once.
// ok is false when the package is not installed for user.
func (e *Engine) Groups(pkg string, user model.UserID) (grouping.Groups, bool) {
	cat := e.Store.Catalog()
	info, ok := cat.Package(model.Key{Package: pkg, User: user})
	if !ok {
		return nil, false
	}
	return grouping.Compute(info, cat), true
}

// NewReloader watches the catalog file and feeds changes into the store.
func (e *Engine) NewReloader() (*pkgstore.Reloader, error) {
	return pkgstore.NewReloader(e.Store, e.CatalogPath, e.Log.Named("reload"), e.Metrics)
}

// Close flushes the journal and the logger.
func (e *Engine) Close() error {
	_ = e.Log.Sync()
	return e.journal.Close()
}
