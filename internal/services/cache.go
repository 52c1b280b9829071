package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"retailcli/internal/dataset"
	"retailcli/internal/features"
	"retailcli/internal/segmentation"
	"retailcli/pkg/contracts/domain"
)

// Snapshot is one immutable load of the dataset: cleaned orders, their
// enriched rows and the segmentation results. Readers share snapshots, so
// nothing in here may be mutated after load.
type Snapshot struct {
	Orders     []domain.Order
	Report     dataset.CleanReport
	Rows       []features.Enriched
	Customers  []domain.Customer
	TierCounts map[domain.CustomerTier]int
	Products   []domain.ProductPerformance

	// Tier joins keyed for the aggregator's customer_tier and product_tier
	// dimensions.
	TiersByCustomer map[string]domain.CustomerTier
	TiersByProduct  map[string]domain.ProductTier

	LoadedAt time.Time
}

// DatasetCache loads and cleans the sales extract once and serves the
// resulting snapshot to concurrent readers. The first Snapshot call loads;
// callers arriving during that load block and share the single result.
// Reload builds a fresh snapshot while readers keep the old one.
type DatasetCache struct {
	path    string
	loader  *dataset.Loader
	cleaner *dataset.Cleaner
	logger  *slog.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
	loads    int
}

// NewDatasetCache creates a cache over the extract at path. A nil logger
// falls back to slog.Default().
func NewDatasetCache(path string, loaderCfg dataset.LoaderConfig, cleanerCfg dataset.CleanerConfig, logger *slog.Logger) *DatasetCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetCache{
		path:    path,
		loader:  dataset.NewLoader(logger, loaderCfg),
		cleaner: dataset.NewCleaner(logger, cleanerCfg),
		logger:  logger,
	}
}

// Path returns the extract location the cache reads from.
func (c *DatasetCache) Path() string {
	return c.path
}

// Loaded reports whether a snapshot is available without triggering a load.
func (c *DatasetCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot != nil
}

// Loads returns how many times the extract has been read from disk.
func (c *DatasetCache) Loads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}

// Snapshot returns the current snapshot, loading the extract on first use.
func (c *DatasetCache) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have completed the load while we waited.
	if c.snapshot != nil {
		return c.snapshot, nil
	}

	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.snapshot = snap
	c.loads++
	return snap, nil
}

// Reload reads the extract again and swaps the snapshot in. Readers are
// served the old snapshot until the new one is ready; on failure the old
// snapshot stays in place.
func (c *DatasetCache) Reload(ctx context.Context) (*Snapshot, error) {
	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.snapshot = snap
	c.loads++
	c.mu.Unlock()
	return snap, nil
}

func (c *DatasetCache) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	table, err := c.loader.Load(ctx, c.path)
	if err != nil {
		return nil, err
	}
	cleaned, err := c.cleaner.Clean(ctx, table)
	if err != nil {
		return nil, err
	}

	rows := features.Enrich(cleaned.Orders)
	customers := segmentation.ScoreCustomers(features.BuildCustomers(cleaned.Orders))
	products, _ := segmentation.BuildProductTiers(rows)

	tiersByCustomer := make(map[string]domain.CustomerTier, len(customers))
	for _, cust := range customers {
		tiersByCustomer[cust.CustomerID] = cust.Tier
	}
	tiersByProduct := make(map[string]domain.ProductTier, len(products))
	for _, p := range products {
		tiersByProduct[p.ProductName] = p.Tier
	}

	snap := &Snapshot{
		Orders:          cleaned.Orders,
		Report:          cleaned.Report,
		Rows:            rows,
		Customers:       customers,
		TierCounts:      segmentation.TierCounts(customers),
		Products:        products,
		TiersByCustomer: tiersByCustomer,
		TiersByProduct:  tiersByProduct,
		LoadedAt:        time.Now(),
	}

	c.logger.InfoContext(ctx, "dataset snapshot loaded",
		slog.String("path", c.path),
		slog.Int("orders", len(snap.Orders)),
		slog.Int("customers", len(snap.Customers)),
		slog.Int("excluded_rows", snap.Report.ExcludedRows()),
		slog.Duration("duration", time.Since(start)))

	return snap, nil
}
