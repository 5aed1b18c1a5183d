package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tempo/internal/formatter"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export renders the report as CSV, markdown, or plain text.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	outputFile := cmd.String("output")

	report, err := r.loadReport(r.reportPath(cmd))
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "csv":
		data, err = formatter.ExportToCSV(report.WatchAlbums)
	case "markdown", "md":
		data, err = formatter.ExportToMarkdown(report)
	case "text", "txt":
		data, err = formatter.ExportToText(report.WatchAlbums)
	default:
		return fmt.Errorf("%w: unknown format %q (want csv, markdown, or text)", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s export: %w", format, err)
	}

	if outputFile == "" {
		_, err = r.output.Write(data)
		return err
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	r.writePlain("✓ Exported %d albums to %s\n", len(report.WatchAlbums), outputFile)
	return nil
}
