// Package services implements the business logic layer between the HTTP
// handlers and the dataset. It owns the in-memory dataset snapshot and
// answers every dashboard query from it.
//
// # Services
//
//   - DatasetCache: loads and cleans the sales extract once, holds the
//     enriched rows, scored customers and product tiers as an immutable
//     snapshot behind a sync.RWMutex, and supports explicit Reload.
//   - AnalyticsService: summaries, KPIs, ranked tables, segment tables and
//     the filter options that populate the dashboard controls.
//   - ChartService: renders a single chart on demand for the current filter
//     selection and returns the written file path.
//   - HealthService: liveness and readiness probes.
//
// # Pattern
//
// Services take their dependencies and a *slog.Logger in the constructor and
// fall back to slog.Default() when the logger is nil. Every method takes a
// context.Context and recomputes independently from the shared snapshot, so
// concurrent requests never observe partial state.
package services
