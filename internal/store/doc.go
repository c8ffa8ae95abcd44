// Package store provides SQLite-backed storage for simulation runs.
//
// A run row records the experiment that produced it (as JSON, with the
// network inlined), its seed and input hash. Its events are stored one row
// per event, numbered by seq in emission order.
//
// # Ordering
//
// Every read orders by seq (events) or created_seq then id (runs), never by
// wall time, so two reads of the same database always agree.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
