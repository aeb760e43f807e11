package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/shared"
)

// AnalysisRepository persists [models.AnalyzedSong] entries in SQLite.
//
// One entry per fingerprint; Upsert replaces content in place rather than
// inserting history.
type AnalysisRepository struct {
	db *sql.DB
}

// NewAnalysisRepository creates a new AnalysisRepository with the given database connection
func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create inserts a new [models.AnalyzedSong] into the database with generated ID and sequence
func (r *AnalysisRepository) Create(entry *models.AnalyzedSong) error {
	sequence, err := NextSequence(r.db, "analyses")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	entry.SetSequence(sequence)

	id := shared.GenerateID()
	entry.SetID(id)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	document, err := json.Marshal(entry.Document())
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	query := `
		INSERT INTO analyses (id, sequence, fingerprint, track_id, track_title, track_artist, track_image_url, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	track := entry.Track()
	_, err = r.db.Exec(query,
		id,
		sequence,
		entry.Fingerprint(),
		track.ID,
		track.Title,
		track.Artist,
		track.ImageURL,
		string(document),
		entry.CreatedAt(),
		entry.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	return nil
}

// Get retrieves an entry by ID. Returns (nil, nil) when no entry exists.
func (r *AnalysisRepository) Get(id string) (*models.AnalyzedSong, error) {
	query := `
		SELECT id, sequence, fingerprint, track_id, track_title, track_artist, track_image_url, document, created_at, updated_at
		FROM analyses
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByFingerprint retrieves the cached analysis for a (title, artist) pair.
//
// Returns (nil, nil) when no entry exists; an error means a transport-level
// fault, which callers treat as a cache miss. When the upsert race has left
// duplicate entries for a fingerprint, the oldest wins.
func (r *AnalysisRepository) GetByFingerprint(title, artist string) (*models.AnalyzedSong, error) {
	query := `
		SELECT id, sequence, fingerprint, track_id, track_title, track_artist, track_image_url, document, created_at, updated_at
		FROM analyses
		WHERE fingerprint = ?
		ORDER BY created_at ASC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query, models.Fingerprint(title, artist)))
}

// Upsert stores a freshly generated document for a track.
//
// When an entry with the same fingerprint exists its document and track
// snapshot are replaced, the original creation time is preserved and the
// update time refreshed; otherwise a new entry is created with both
// timestamps equal. Returns the entry's identifier either way.
func (r *AnalysisRepository) Upsert(track models.TrackSnapshot, document models.AnalysisDocument) (string, error) {
	existing, err := r.GetByFingerprint(track.Title, track.Artist)
	if err != nil {
		return "", fmt.Errorf("failed to check existing analysis: %w", err)
	}

	if existing == nil {
		entry := models.NewAnalyzedSong(0, track, document)
		if err := r.Create(entry); err != nil {
			return "", err
		}
		return entry.ID(), nil
	}

	serialized, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}

	query := `
		UPDATE analyses
		SET track_id = ?, track_title = ?, track_artist = ?, track_image_url = ?, document = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		track.ID,
		track.Title,
		track.Artist,
		track.ImageURL,
		string(serialized),
		time.Now(),
		existing.ID(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to update analysis: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return "", fmt.Errorf("%w: %s", shared.ErrAnalysisNotFound, existing.ID())
	}

	return existing.ID(), nil
}

// List retrieves the most recently created entries, newest first.
func (r *AnalysisRepository) List(limit int) ([]*models.AnalyzedSong, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, sequence, fingerprint, track_id, track_title, track_artist, track_image_url, document, created_at, updated_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var entries []*models.AnalyzedSong
	for rows.Next() {
		entry, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Delete removes an entry by ID. Administrative operation; the analysis
// pipeline never deletes entries.
func (r *AnalysisRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAnalysisNotFound, id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry scans one row into a [models.AnalyzedSong].
func scanEntry(row rowScanner) (*models.AnalyzedSong, error) {
	var (
		id          string
		sequence    int
		fingerprint string
		trackID     string
		trackTitle  string
		trackArtist string
		imageURL    string
		document    string
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&id, &sequence, &fingerprint, &trackID, &trackTitle, &trackArtist, &imageURL, &document, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var doc models.AnalysisDocument
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		return nil, fmt.Errorf("failed to deserialize document: %w", err)
	}

	snapshot := models.TrackSnapshot{
		ID:       trackID,
		Title:    trackTitle,
		Artist:   trackArtist,
		ImageURL: imageURL,
	}

	entry := models.NewAnalyzedSong(sequence, snapshot, doc)
	entry.SetID(id)
	entry.SetFingerprint(fingerprint)
	entry.SetCreatedAt(createdAt)
	entry.SetUpdatedAt(updatedAt)

	return entry, nil
}

// scanOne scans a single [sql.Row], mapping no-rows to (nil, nil).
func (r *AnalysisRepository) scanOne(row *sql.Row) (*models.AnalyzedSong, error) {
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}
	return entry, nil
}

// scanRow scans a row from [sql.Rows].
func (r *AnalysisRepository) scanRow(rows *sql.Rows) (*models.AnalyzedSong, error) {
	entry, err := scanEntry(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}
	return entry, nil
}
