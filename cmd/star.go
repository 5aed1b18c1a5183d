package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/desertthunder/tempo/internal/tasks"
	"github.com/desertthunder/tempo/internal/ui"
	"github.com/urfave/cli/v3"
)

// StarToggle toggles the star on an album by exact (case-insensitive) name.
func (r *Runner) StarToggle(ctx context.Context, cmd *cli.Command) error {
	album := cmd.StringArg("album")
	if album == "" {
		return fmt.Errorf("%w: album name", shared.ErrMissingArgument)
	}

	path := r.reportPath(cmd)
	report, err := r.loadReport(path)
	if err != nil {
		return err
	}

	toggled, count := tasks.ToggleStars(report.WatchAlbums, tasks.ByAlbumName(album))
	if count == 0 {
		return fmt.Errorf("%w: no album named %q", shared.ErrRecordNotFound, album)
	}

	report.WatchAlbums = toggled
	report.RecomputeStatistics()
	if err := r.saveReport(path, report); err != nil {
		return err
	}

	for _, record := range toggled {
		if !strings.EqualFold(record.AlbumName, album) {
			continue
		}
		if record.Starred {
			r.writePlain("★ Starred %q\n", record.AlbumName)
		} else {
			r.writePlain("☆ Unstarred %q\n", record.AlbumName)
		}
	}
	return nil
}

// StarList prints the starred albums in the report.
func (r *Runner) StarList(ctx context.Context, cmd *cli.Command) error {
	report, err := r.loadReport(r.reportPath(cmd))
	if err != nil {
		return err
	}

	starred := tasks.Starred(report.WatchAlbums)
	if len(starred) == 0 {
		r.writePlain("No starred albums\n")
		return nil
	}

	r.writePlain("Starred albums (%d):\n\n", len(starred))
	for i, record := range starred {
		artist := record.ArtistName
		if artist == "" {
			artist = "Unknown Artist"
		}
		r.writePlain("%d. %s - %s\n", i+1, record.AlbumName, artist)
		if record.HasRun() {
			r.writePlain("   🏃 %s (%.2f mi)\n", record.ActivityName, record.DistanceMiles)
		}
	}
	return nil
}

// StarSearch launches the interactive picker for toggling stars.
func (r *Runner) StarSearch(ctx context.Context, cmd *cli.Command) error {
	path := r.reportPath(cmd)
	report, err := r.loadReport(path)
	if err != nil {
		return err
	}
	if len(report.WatchAlbums) == 0 {
		return fmt.Errorf("%w: report has no albums", shared.ErrInvalidInput)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tempo-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(report.WatchAlbums)
	p := tea.NewProgram(model)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	picker, ok := final.(*ui.Model)
	if !ok || !picker.Saved() {
		r.writePlain("No changes saved\n")
		return nil
	}

	report.WatchAlbums = picker.Records()
	report.RecomputeStatistics()
	if err := r.saveReport(path, report); err != nil {
		return err
	}

	r.writePlain("✓ Saved %d change(s) to %s\n", picker.Toggled(), path)
	return nil
}
