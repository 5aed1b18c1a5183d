package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/shared"
)

// CachedArtistLookup implements services.ArtistLookup by fronting a source
// lookup with the SQLite cache.
//
// Hits never touch the network. Misses query the source and persist the
// resolution; duplicate inserts from concurrent runs are silently ignored
// (UNIQUE constraint on album).
type CachedArtistLookup struct {
	repo   *ArtistRepository
	source services.ArtistLookup
}

// NewCachedArtistLookup creates a caching wrapper around source.
func NewCachedArtistLookup(repo *ArtistRepository, source services.ArtistLookup) *CachedArtistLookup {
	return &CachedArtistLookup{repo: repo, source: source}
}

// Name identifies the underlying source.
func (c *CachedArtistLookup) Name() string {
	return c.source.Name() + " (cached)"
}

// SearchArtist resolves an album's artist, consulting the cache first.
func (c *CachedArtistLookup) SearchArtist(ctx context.Context, album string) (string, error) {
	cached, err := c.repo.GetByAlbum(album)
	if err == nil {
		return cached.Artist(), nil
	}
	if !errors.Is(err, shared.ErrArtistNotFound) {
		return "", fmt.Errorf("cache lookup failed: %w", err)
	}

	artist, err := c.source.SearchArtist(ctx, album)
	if err != nil {
		return "", err
	}

	lookup := models.NewArtistLookup(0, album, artist, strings.ToLower(c.source.Name()))
	if err := c.repo.Create(lookup); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return artist, nil
		}
		return "", fmt.Errorf("failed to cache artist: %w", err)
	}

	return artist, nil
}
