// Package metastore persists pipeline output in SQLite: a ledger of
// processed jobs plus the metadata and embedding-vector rows written by the
// storage stage. The state directory is guarded by a file lock so only one
// mediaflow process uses it at a time.
package metastore
