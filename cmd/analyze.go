package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tempo/internal/applemusic"
	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/desertthunder/tempo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Analyze parses Apple Music export CSVs, aggregates play events into album
// records, merges with any previously written report, and writes the result.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	activityPath := cmd.String("activity")
	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = r.config.Output.Path
	}

	activityFile, err := os.Open(activityPath)
	if err != nil {
		return fmt.Errorf("failed to open play activity file: %w", err)
	}
	defer activityFile.Close()

	r.logger.Info("parsing play activity", "path", activityPath)
	parsed, err := applemusic.ParsePlayActivity(activityFile)
	if err != nil {
		return fmt.Errorf("failed to parse play activity: %w", err)
	}
	r.logger.Info("parsed play events", "events", len(parsed.Events), "skipped", parsed.Skipped)

	artists, genres, err := r.loadMetadata(cmd)
	if err != nil {
		return err
	}

	var existing *models.Report
	if _, statErr := os.Stat(outputPath); statErr == nil {
		if existing, err = r.loadReport(outputPath); err != nil {
			return fmt.Errorf("existing report is unreadable, refusing to overwrite: %w", err)
		}
		r.logger.Info("merging with existing report", "path", outputPath, "albums", len(existing.WatchAlbums))
	}

	input := tasks.AnalyzeInput{
		Events: parsed.Events,
		Options: tasks.AggregateOptions{
			ListenThreshold:     cmd.Float("listen-threshold"),
			CompletionThreshold: cmd.Float("completion-threshold"),
			WatchOnly:           cmd.Bool("watch-only"),
			Artists:             artists,
			Genres:              genres,
		},
		Existing: existing,
	}

	engine := tasks.NewReportEngine(r.activities, r.artists)
	progress := make(chan tasks.ProgressUpdate, 50)
	done := r.logProgress(progress)

	report, err := engine.Analyze(ctx, input, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := r.saveReport(outputPath, report); err != nil {
		return err
	}

	r.writePlain("✓ Report written to %s\n", outputPath)
	r.writePlain("  Albums: %d\n", report.Statistics.TotalAlbums)
	r.writePlain("  Total plays: %d\n", report.Statistics.TotalPlays)
	r.writePlain("  Average completion: %.1f%%\n", report.Statistics.AverageCompletion)
	return nil
}

// loadMetadata builds the album metadata maps from the optional
// --containers and --artists inputs. The mapping file wins on conflicts
// since it usually carries curated or API-sourced corrections.
func (r *Runner) loadMetadata(cmd *cli.Command) (map[string]string, map[string]string, error) {
	artists := map[string]string{}
	genres := map[string]string{}

	if containersPath := cmd.String("containers"); containersPath != "" {
		f, err := os.Open(containersPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open container details file: %w", err)
		}
		details, err := applemusic.ParseContainerDetails(f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse container details: %w", err)
		}

		artists = details.Artists()
		genres = details.Genres()
		r.logger.Info("parsed container details", "albums", details.Len())
	}

	if mappingPath := cmd.String("artists"); mappingPath != "" {
		data, err := shared.VerifyAndReadFile(mappingPath)
		if err != nil {
			return nil, nil, err
		}
		mapping, err := applemusic.ParseArtistMapping(data)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse artist mapping: %w", err)
		}
		for album, artist := range mapping.Mapping {
			artists[album] = artist
		}
		r.logger.Info("loaded artist mapping", "entries", len(mapping.Mapping))
	}

	return artists, genres, nil
}
