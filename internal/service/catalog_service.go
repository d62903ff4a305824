package service

import (
	"context"
	"fmt"
	"ftareview/internal/engine"
	"ftareview/internal/metrics"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// CatalogSource provides raw catalog data (MongoDB or a YAML file)
type CatalogSource interface {
	Load(ctx context.Context) (engine.CatalogData, error)
}

// CatalogInfo describes the catalog snapshot currently in use. Version counts
// reloads in this process; Fingerprint identifies the content and is stable
// across restarts and replicas.
type CatalogInfo struct {
	Version     uint64       `json:"version"`
	Fingerprint string       `json:"fingerprint"`
	LoadedAt    time.Time    `json:"loaded_at"`
	Stats       engine.Stats `json:"stats"`
}

type catalogSnapshot struct {
	catalog *engine.Catalog
	info    CatalogInfo
}

// CatalogService owns the current catalog snapshot. Reads never block:
// a reload builds the new snapshot on the side and swaps it in atomically.
type CatalogService struct {
	source      CatalogSource
	metrics     *metrics.Metrics
	logger      *zap.Logger
	broadcaster Broadcaster

	current  atomic.Pointer[catalogSnapshot]
	reloadMu sync.Mutex
	version  uint64
}

// NewCatalogService creates a new catalog service. m may be nil.
func NewCatalogService(source CatalogSource, m *metrics.Metrics, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		source:      source,
		metrics:     m,
		logger:      logger,
		broadcaster: nopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster used to announce reloads
func (s *CatalogService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Reload loads and validates a fresh catalog. On failure the previous
// snapshot stays in use.
func (s *CatalogService) Reload(ctx context.Context) (CatalogInfo, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	info, err := s.reload(ctx)
	if s.metrics != nil {
		s.metrics.ObserveReload(err, info.Stats.Rules)
	}
	if err != nil {
		s.logger.Error("catalog reload failed", zap.Error(err))
		return CatalogInfo{}, err
	}

	s.logger.Info("catalog loaded",
		zap.Uint64("version", info.Version),
		zap.String("fingerprint", info.Fingerprint),
		zap.Int("questions", info.Stats.Questions),
		zap.Int("sections", info.Stats.Sections),
		zap.Int("sub_areas", info.Stats.SubAreas),
		zap.Int("rules", info.Stats.Rules),
	)
	s.broadcaster.BroadcastToAll(EventCatalogReloaded, info)
	return info, nil
}

func (s *CatalogService) reload(ctx context.Context) (CatalogInfo, error) {
	data, err := s.source.Load(ctx)
	if err != nil {
		return CatalogInfo{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog, err := engine.NewCatalog(data)
	if err != nil {
		return CatalogInfo{}, fmt.Errorf("failed to build catalog: %w", err)
	}

	s.version++
	snap := &catalogSnapshot{
		catalog: catalog,
		info: CatalogInfo{
			Version:     s.version,
			Fingerprint: catalog.Fingerprint(),
			LoadedAt:    time.Now().UTC(),
			Stats:       catalog.Stats(),
		},
	}
	s.current.Store(snap)

	if missing := catalog.SubAreasWithoutRules(); len(missing) > 0 {
		s.logger.Warn("sub-areas without rules can never apply", zap.Strings("sub_areas", missing))
	}
	return snap.info, nil
}

// Current returns the catalog in use
func (s *CatalogService) Current() (*engine.Catalog, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrCatalogNotLoaded
	}
	return snap.catalog, nil
}

// Info describes the catalog in use
func (s *CatalogService) Info() (CatalogInfo, error) {
	snap := s.current.Load()
	if snap == nil {
		return CatalogInfo{}, ErrCatalogNotLoaded
	}
	return snap.info, nil
}
