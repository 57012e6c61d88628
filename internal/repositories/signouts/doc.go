// Package signouts persists the sign-out ledger.
//
// Three implementations of Repository are provided: JSONRepository keeps the
// whole ledger in one JSON document (the historical format), SQLiteRepository
// and PostgresRepository store one row per sign-out. IDs are assigned by the
// repository as max(existing)+1, zero-padded to three digits.
package signouts
