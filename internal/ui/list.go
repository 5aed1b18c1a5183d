package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tempo/internal/models"
)

var (
	_ list.Item = albumItem{}
)

// albumItem wraps [models.AlbumRecord] to implement [list.Item].
type albumItem struct {
	record models.AlbumRecord
}

func (i albumItem) FilterValue() string { return i.record.AlbumName }

func (i albumItem) Title() string {
	star := "☆"
	if i.record.Starred {
		star = "★"
	}
	return fmt.Sprintf("%s %s", star, i.record.AlbumName)
}

func (i albumItem) Description() string {
	desc := i.record.ArtistName
	if desc == "" {
		desc = "Unknown Artist"
	}
	desc = fmt.Sprintf("%s • %.1f%% complete • %d plays", desc, i.record.CompletionPercentage, i.record.PlayCount)
	if i.record.HasRun() {
		desc = fmt.Sprintf("%s • 🏃 %s", desc, i.record.ActivityName)
	}
	return desc
}
