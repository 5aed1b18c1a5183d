package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/tempo/internal/shared"
)

// ArtistLookup is a cached album-to-artist resolution, persisted so reruns
// never repeat an iTunes Search query for the same album.
type ArtistLookup struct {
	id        string
	sequence  int
	album     string
	artist    string
	source    string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewArtistLookup creates a lookup for the given album and artist.
// Source names where the resolution came from ("itunes" or "manual").
func NewArtistLookup(sequence int, album, artist, source string) *ArtistLookup {
	now := time.Now()
	return &ArtistLookup{
		sequence:  sequence,
		album:     album,
		artist:    artist,
		source:    source,
		createdAt: now,
		updatedAt: now,
	}
}

func (l *ArtistLookup) ID() string            { return l.id }
func (l *ArtistLookup) Sequence() int         { return l.sequence }
func (l *ArtistLookup) Album() string         { return l.album }
func (l *ArtistLookup) Artist() string        { return l.artist }
func (l *ArtistLookup) Source() string        { return l.source }
func (l *ArtistLookup) CreatedAt() time.Time  { return l.createdAt }
func (l *ArtistLookup) UpdatedAt() time.Time  { return l.updatedAt }
func (l *ArtistLookup) DeletedAt() *time.Time { return l.deletedAt }

func (l *ArtistLookup) SetID(id string)           { l.id = id }
func (l *ArtistLookup) SetArtist(artist string)   { l.artist = artist }
func (l *ArtistLookup) SetUpdatedAt(t time.Time)  { l.updatedAt = t }
func (l *ArtistLookup) SetDeletedAt(t *time.Time) { l.deletedAt = t }

// Validate checks that the lookup carries the fields the cache requires.
func (l *ArtistLookup) Validate() error {
	if l.album == "" {
		return fmt.Errorf("%w: album is required", shared.ErrInvalidInput)
	}
	if l.artist == "" {
		return fmt.Errorf("%w: artist is required", shared.ErrInvalidInput)
	}
	if l.source == "" {
		return fmt.Errorf("%w: source is required", shared.ErrInvalidInput)
	}
	return nil
}
