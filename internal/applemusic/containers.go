package applemusic

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/desertthunder/tempo/internal/shared"
)

// ContainerDetails holds album metadata parsed from a Container Details
// export: artist and genre by album name.
type ContainerDetails struct {
	artists map[string]string
	genres  map[string]string
}

// ParseContainerDetails reads a Container Details CSV and builds the
// album-to-artist and album-to-genre maps. Only ALBUM containers are
// considered. Descriptions follow the "Artist - Album" convention; when a
// description has no separator it is taken as the album name and the
// Artists column supplies the artist. First occurrence wins.
func ParseContainerDetails(r io.Reader) (*ContainerDetails, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", shared.ErrInvalidInput, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	details := &ContainerDetails{
		artists: make(map[string]string),
		genres:  make(map[string]string),
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		if field("Container Type") != "ALBUM" {
			continue
		}

		desc := field("Container Description")
		artistsField := field("Artists")

		var album, artist string
		if before, after, ok := strings.Cut(desc, " - "); ok {
			artist = strings.TrimSpace(before)
			album = strings.TrimSpace(after)
		} else if desc != "" && artistsField != "" {
			album = desc
			artist = artistsField
		}
		if album == "" {
			continue
		}
		album = shared.StripSingleSuffix(album)

		if artist != "" {
			if _, seen := details.artists[album]; !seen {
				details.artists[album] = artist
			}
		}
		if genre := cleanGenres(field("Genres")); genre != "" {
			if _, seen := details.genres[album]; !seen {
				details.genres[album] = genre
			}
		}
	}

	return details, nil
}

// ArtistFor returns the artist for an album, or an empty string.
func (d *ContainerDetails) ArtistFor(album string) string {
	return d.artists[album]
}

// GenreFor returns the cleaned genre list for an album, or an empty string.
func (d *ContainerDetails) GenreFor(album string) string {
	return d.genres[album]
}

// Len returns how many albums have artist information.
func (d *ContainerDetails) Len() int {
	return len(d.artists)
}

// Artists returns a copy of the album-to-artist map.
func (d *ContainerDetails) Artists() map[string]string {
	return maps.Clone(d.artists)
}

// Genres returns a copy of the album-to-genre map.
func (d *ContainerDetails) Genres() map[string]string {
	return maps.Clone(d.genres)
}

// cleanGenres drops the generic "Music" genre and normalizes the
// comma-separated list.
func cleanGenres(genres string) string {
	if genres == "" {
		return ""
	}
	var kept []string
	for _, g := range strings.Split(genres, ",") {
		g = strings.TrimSpace(g)
		if g == "" || strings.EqualFold(g, "music") {
			continue
		}
		kept = append(kept, g)
	}
	return strings.Join(kept, ", ")
}

// ArtistMapping is the JSON document produced by artist fetch runs:
// album-to-artist pairs resolved via the iTunes Search API.
type ArtistMapping struct {
	Mapping map[string]string `json:"artist_mapping"`
}

// ParseArtistMapping decodes a saved artist mapping file.
func ParseArtistMapping(data []byte) (*ArtistMapping, error) {
	var m ArtistMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse artist mapping: %v", shared.ErrInvalidInput, err)
	}
	if m.Mapping == nil {
		m.Mapping = make(map[string]string)
	}
	return &m, nil
}
