// Package store keeps the history of conformance runs in SQLite.
//
// Each run of a module is one row in runs, carrying the tallies and the
// canonical JSON report, plus one row per outcome in outcomes. Runs are
// append-only.
//
// # Ordering
//
// Runs are ordered by seq, a logical clock assigned inside the insert
// transaction (the previous maximum plus one), never by wall time. Every
// query that returns runs orders by seq ASC, id ASC COLLATE BINARY so two
// reads of the same database produce identical output. Outcomes keep the
// order the runner reported them in.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s on lock contention
//   - foreign_keys=ON: Outcomes must belong to a run
//
// # Schema Versioning
//
// The schema version lives in PRAGMA user_version and migrations are
// applied in order on Open.
package store
