// package models defines the data model for the lyric analysis web service
package models

import (
	"encoding/json"
	"time"
)

// Model defines the base interface for all persistent models in the analysis service.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Track represents a catalog search result.
//
// Immutable once returned; its lifetime is a single search response.
type Track struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"` // All artist names joined with ", "
	ImageURL   string  `json:"imageUrl"`
	Album      string  `json:"album,omitempty"`
	PreviewURL *string `json:"previewUrl"`
	SpotifyURL string  `json:"spotifyUrl"`
}

// AnalysisSection is one interpreted segment of a song, in song-structure order.
type AnalysisSection struct {
	Section     string `json:"section"` // Closed vocabulary: Intro, Verse N, Pre-Chorus, Chorus, Post-Chorus, Bridge, Outro, Hook
	LyricsQuote string `json:"lyricsQuote"`
	Content     string `json:"content"`
}

// Metaphor explains a notable phrase, slang term, or metaphor. No ordering guarantee.
type Metaphor struct {
	Phrase  string `json:"phrase"`
	Meaning string `json:"meaning"`
}

// AnalysisDocument is the structured lyric analysis produced by the generator
// and persisted by the cache.
//
// FullLyrics is optional; an empty value signals "lyrics not found", not an error.
// Every other field is required for the document to be valid.
type AnalysisDocument struct {
	FullLyrics  string            `json:"fullLyrics,omitempty"`
	Vibe        string            `json:"vibe"`
	Overview    string            `json:"overview"`
	Analysis    []AnalysisSection `json:"analysis"`
	Metaphors   []Metaphor        `json:"metaphors"`
	CoreMessage string            `json:"coreMessage"`
}

// VideoReference identifies a matched video.
type VideoReference struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
}

// VideoStatus distinguishes the degraded outcomes of video lookup.
//
// The "adapter failed" and "nothing found" states are rendered differently
// by consumers, so they are separate values rather than a shared nil.
type VideoStatus int

const (
	VideoFound    VideoStatus = iota // A video was matched
	VideoNotFound                    // Lookup ran (or was disabled) and produced nothing
	VideoFailed                      // Lookup errored or timed out
)

// VideoResult is the tagged outcome of a video lookup.
type VideoResult struct {
	Status VideoStatus
	Video  *VideoReference
}

// MarshalJSON serializes the wire shape consumed by the UI:
// a video object when found, null when nothing was found, and
// {"error": true} when the adapter failed.
func (v VideoResult) MarshalJSON() ([]byte, error) {
	switch v.Status {
	case VideoFound:
		return json.Marshal(v.Video)
	case VideoFailed:
		return json.Marshal(map[string]bool{"error": true})
	default:
		return []byte("null"), nil
	}
}

// TrackSnapshot is the denormalized track metadata stored alongside a cached analysis.
type TrackSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	ImageURL string `json:"imageUrl"`
}

// SnapshotOf extracts the persisted subset of a [Track].
func SnapshotOf(track Track) TrackSnapshot {
	return TrackSnapshot{
		ID:       track.ID,
		Title:    track.Title,
		Artist:   track.Artist,
		ImageURL: track.ImageURL,
	}
}

// AnalyzedSong is a cached analysis entry owned by the repository layer.
//
// Created on first successful generation for a fingerprint; an upsert replaces
// the document and snapshot, preserves createdAt and refreshes updatedAt.
// The analysis pipeline never deletes entries; deletion is an administrative
// CLI operation.
type AnalyzedSong struct {
	id          string
	sequence    int
	fingerprint string
	track       TrackSnapshot
	document    AnalysisDocument
	createdAt   time.Time
	updatedAt   time.Time
}

// NewAnalyzedSong creates a cache entry for the given track snapshot and document.
// The fingerprint is derived from the snapshot's title and artist.
func NewAnalyzedSong(sequence int, track TrackSnapshot, document AnalysisDocument) *AnalyzedSong {
	now := time.Now()
	return &AnalyzedSong{
		sequence:    sequence,
		fingerprint: Fingerprint(track.Title, track.Artist),
		track:       track,
		document:    document,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (a *AnalyzedSong) ID() string                 { return a.id }
func (a *AnalyzedSong) Sequence() int              { return a.sequence }
func (a *AnalyzedSong) Fingerprint() string        { return a.fingerprint }
func (a *AnalyzedSong) Track() TrackSnapshot       { return a.track }
func (a *AnalyzedSong) Document() AnalysisDocument { return a.document }
func (a *AnalyzedSong) CreatedAt() time.Time       { return a.createdAt }
func (a *AnalyzedSong) UpdatedAt() time.Time       { return a.updatedAt }

func (a *AnalyzedSong) SetID(id string)              { a.id = id }
func (a *AnalyzedSong) SetSequence(seq int)          { a.sequence = seq }
func (a *AnalyzedSong) SetCreatedAt(t time.Time)     { a.createdAt = t }
func (a *AnalyzedSong) SetUpdatedAt(t time.Time)     { a.updatedAt = t }
func (a *AnalyzedSong) SetFingerprint(fp string)     { a.fingerprint = fp }
func (a *AnalyzedSong) SetTrack(track TrackSnapshot) { a.track = track }

// SetDocument replaces the stored analysis document.
func (a *AnalyzedSong) SetDocument(document AnalysisDocument) { a.document = document }

// Validate checks entry invariants before persistence.
func (a *AnalyzedSong) Validate() error {
	if a.fingerprint == "" {
		return &ValidationError{Field: "fingerprint", Code: CodeMissingField}
	}
	if a.track.Title == "" {
		return &ValidationError{Field: "track.title", Code: CodeMissingField}
	}
	if a.track.Artist == "" {
		return &ValidationError{Field: "track.artist", Code: CodeMissingField}
	}
	return a.document.Validate()
}
