// Package applemusic parses Apple Music privacy-export CSVs.
//
// Two files matter to the pipeline:
//
//   - Play Activity: one row per playback event, parsed into
//     [models.PlayEvent] values by [ParsePlayActivity]. Rows without an
//     album or song name are counted and skipped.
//   - Container Details: album metadata, parsed by [ParseContainerDetails]
//     into artist and genre lookups keyed by album name.
//
// [ParseArtistMapping] reads the JSON mapping file written by artist fetch
// runs, which supplements the Container Details data for albums the export
// left unattributed.
package applemusic
