// Package repositories provides the persistence layer for cached song analyses.
//
// AnalysisRepository implements exact-match lookup by fingerprint and a
// read-before-write upsert that preserves creation timestamps. At most one
// entry should exist per fingerprint; this is enforced by the upsert's
// read-then-write, not a uniqueness constraint, so two concurrent writers for
// the same fingerprint can still race a duplicate in. Lookups always take the
// oldest entry, which keeps the race harmless for readers.
package repositories
