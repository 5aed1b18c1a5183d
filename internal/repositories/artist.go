package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/shared"
)

// ArtistRepository implements models.Repository[*models.ArtistLookup] for
// the album-to-artist cache.
//
// Lookups are unique per album with soft delete support, so a rerun never
// repeats an iTunes query for an album it has already resolved.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts a new [models.ArtistLookup] with generated ID and sequence
func (r *ArtistRepository) Create(lookup *models.ArtistLookup) error {
	if err := lookup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "artist_lookups")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	lookup.SetID(id)

	query := `
		INSERT INTO artist_lookups (id, sequence, album, artist, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		lookup.Album(),
		lookup.Artist(),
		lookup.Source(),
		lookup.CreatedAt(),
		lookup.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert artist lookup: %w", err)
	}

	return nil
}

// Get retrieves a lookup by ID, excluding soft-deleted rows
func (r *ArtistRepository) Get(id string) (*models.ArtistLookup, error) {
	query := `
		SELECT id, sequence, album, artist, source, created_at, updated_at, deleted_at
		FROM artist_lookups
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByAlbum retrieves a lookup by album name
func (r *ArtistRepository) GetByAlbum(album string) (*models.ArtistLookup, error) {
	query := `
		SELECT id, sequence, album, artist, source, created_at, updated_at, deleted_at
		FROM artist_lookups
		WHERE album = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, album))
}

// Update modifies an existing lookup in the database
func (r *ArtistRepository) Update(lookup *models.ArtistLookup) error {
	if err := lookup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	lookup.SetUpdatedAt(now)

	query := `
		UPDATE artist_lookups
		SET artist = ?, source = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, lookup.Artist(), lookup.Source(), now, lookup.ID())
	if err != nil {
		return fmt.Errorf("failed to update artist lookup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, lookup.ID())
	}

	return nil
}

// Delete soft-deletes a lookup by ID
func (r *ArtistRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE artist_lookups
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete artist lookup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
	}

	return nil
}

// List retrieves all lookups matching the given criteria, excluding soft-deleted rows
func (r *ArtistRepository) List(criteria map[string]any) ([]*models.ArtistLookup, error) {
	query := `
		SELECT id, sequence, album, artist, source, created_at, updated_at, deleted_at
		FROM artist_lookups
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if source, ok := criteria["source"].(string); ok && source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artist lookups: %w", err)
	}
	defer rows.Close()

	var lookups []*models.ArtistLookup
	for rows.Next() {
		lookup, err := scanLookup(rows.Scan)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, lookup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lookups, nil
}

// Mapping returns all cached lookups as an album-to-artist map.
func (r *ArtistRepository) Mapping() (map[string]string, error) {
	lookups, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	mapping := make(map[string]string, len(lookups))
	for _, l := range lookups {
		mapping[l.Album()] = l.Artist()
	}
	return mapping, nil
}

// scanOne scans a single [sql.Row] into a [models.ArtistLookup]
func (r *ArtistRepository) scanOne(row *sql.Row) (*models.ArtistLookup, error) {
	lookup, err := scanLookup(row.Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrArtistNotFound
	}
	if err != nil {
		return nil, err
	}
	return lookup, nil
}

// scanLookup builds a [models.ArtistLookup] from a scan function shared by
// row and rows variants.
func scanLookup(scan func(...any) error) (*models.ArtistLookup, error) {
	var (
		id        string
		sequence  int
		album     string
		artist    string
		source    string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := scan(&id, &sequence, &album, &artist, &source, &createdAt, &updatedAt, &deletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan artist lookup: %w", err)
	}

	lookup := models.NewArtistLookup(sequence, album, artist, source)
	lookup.SetID(id)
	lookup.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		lookup.SetDeletedAt(&deletedAt.Time)
	}

	return lookup, nil
}
