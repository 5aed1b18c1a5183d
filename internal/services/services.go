// package services defines interfaces for the external HTTP APIs the
// pipeline talks to
//
// Strava, iTunes Search
package services

import (
	"context"
	"time"

	"github.com/desertthunder/tempo/internal/models"
)

// ActivityProvider retrieves workout activities from a fitness service.
type ActivityProvider interface {
	// ListActivities returns all activities with a start time inside
	// [start, end]. Implementations may return a partial result alongside
	// an error when the fetch could not complete.
	ListActivities(ctx context.Context, start, end time.Time) ([]models.Activity, error)

	// Name returns the name of the service (e.g., "Strava")
	Name() string
}

// ArtistLookup resolves an album name to its artist.
type ArtistLookup interface {
	// SearchArtist returns the artist for the given album name, or
	// an error wrapping shared.ErrArtistNotFound when no match exists.
	SearchArtist(ctx context.Context, album string) (string, error)

	// Name returns the name of the lookup source (e.g., "iTunes")
	Name() string
}
