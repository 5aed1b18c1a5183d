package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tempo/internal/repositories"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/desertthunder/tempo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ArtistsFetch resolves missing artists via the iTunes Search API, caching
// results in SQLite so re-runs never repeat a lookup.
func (r *Runner) ArtistsFetch(ctx context.Context, cmd *cli.Command) error {
	path := r.reportPath(cmd)
	dryRun := cmd.Bool("test")

	report, err := r.loadReport(path)
	if err != nil {
		return err
	}

	lookup, cleanup, err := r.artistLookup()
	if err != nil {
		return err
	}
	defer cleanup()

	engine := tasks.NewReportEngine(r.activities, lookup)
	progress := make(chan tasks.ProgressUpdate, 50)
	done := r.logProgress(progress)

	updated, result, err := engine.FetchArtists(ctx, report, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("artist fetch failed: %w", err)
	}

	r.writePlain("✓ Albums missing an artist: %d\n", result.Missing)
	r.writePlain("  Resolved: %d\n", result.Resolved)
	r.writePlain("  Not found: %d\n", result.NotFound)

	if result.Resolved == 0 {
		r.writePlain("Nothing to write\n")
		return nil
	}
	if dryRun {
		r.writePlain("Test mode: report not written\n")
		return nil
	}

	if err := r.saveReport(path, updated); err != nil {
		return err
	}
	r.writePlain("✓ Report updated at %s\n", path)
	return nil
}

// artistLookup returns the injected lookup or a cache-backed iTunes client.
// The cleanup closes the cache database.
func (r *Runner) artistLookup() (services.ArtistLookup, func(), error) {
	if r.artists != nil {
		return r.artists, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open artist cache: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	itunesOpts := []services.ITunesOption{services.WithITunesHTTPClient(r.httpClient)}
	if rpm := r.config.ITunes.RequestsPerMinute; rpm > 0 {
		itunesOpts = append(itunesOpts, services.WithRequestsPerMinute(rpm))
	}
	itunes := services.NewITunesService(itunesOpts...)

	repo := repositories.NewArtistRepository(db)
	cached := repositories.NewCachedArtistLookup(repo, itunes)

	return cached, func() { db.Close() }, nil
}
