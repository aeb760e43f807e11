// Package models defines domain entities and persistence interfaces for the lyriq analysis service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external provider data
//   - [Track] : Song metadata from catalog search
//   - [AnalysisDocument] : Structured lyric analysis produced by the generator
//   - [VideoReference] / [VideoResult] : Video lookup result with degraded-state sentinels
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [AnalyzedSong] : Cached analysis keyed by a normalized track fingerprint
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps and validation.
// The [Fingerprint] function derives the deterministic cache lookup key from (title, artist).
package models
