// Package shared holds cross-cutting helpers that belong to no single
// domain package.
//
// The testutil subpackage provides slog capture handlers and log
// assertions used by component tests across the codebase. Code here must
// stay free of business logic and of dependencies on other internal
// packages, so it can be imported from anywhere without cycles.
package shared
