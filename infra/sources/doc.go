// Package sources implements the ingestion sources: a SQL work-order store
// (SQLite for a single depot, Postgres for the maintenance system mirror), a
// JSONL certificate feed written by the depot sensor gateway, in-memory and
// Redis override stores, and static sources for demos and tests. Importing
// the package registers every implementation with core/ingestion.
package sources
