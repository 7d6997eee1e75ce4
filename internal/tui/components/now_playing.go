package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/airwave/internal/domain"
	"github.com/mmcdole/airwave/internal/tui/styles"
)

// NowPlaying is the bar above the favorites list showing what is loaded,
// whether it is playing, and the volume.
type NowPlaying struct {
	Name     string // display name, or the placeholder when nothing is selected
	Selected bool
	Playing  bool
	Volume   int

	width int
}

func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

func (n *NowPlaying) SetWidth(width int) {
	n.width = width
}

// Glyph is the transport glyph for the current state
func (n *NowPlaying) Glyph() string {
	switch {
	case !n.Selected:
		return styles.StopChar
	case n.Playing:
		return styles.PauseChar
	default:
		return styles.PlayChar
	}
}

// VolumeLabel renders the tier glyph and percentage, e.g. "🔉 40%"
func (n *NowPlaying) VolumeLabel() string {
	glyph := styles.VolumeHighChar
	switch domain.TierForVolume(n.Volume) {
	case domain.VolumeMuted:
		glyph = styles.VolumeMutedChar
	case domain.VolumeLow:
		glyph = styles.VolumeLowChar
	}
	return fmt.Sprintf("%s %d%%", glyph, n.Volume)
}

func (n *NowPlaying) View() string {
	frameW, _ := styles.NowPlayingStyle.GetFrameSize()
	inner := max(n.width-frameW, 10)

	glyph := styles.PlayingGlyphStyle.Render(n.Glyph())
	if !n.Playing {
		glyph = styles.DimStyle.Render(n.Glyph())
	}
	volume := styles.SubtitleStyle.Render(n.VolumeLabel())

	label := n.Name
	if n.Selected {
		label = "Playing: " + n.Name
	}
	nameWidth := inner - lipgloss.Width(n.Glyph()) - lipgloss.Width(n.VolumeLabel()) - 2
	name := styles.TitleStyle.Render(styles.Pad(styles.Truncate(label, nameWidth), max(nameWidth, 0)))
	if !n.Selected {
		name = styles.DimStyle.Render(styles.Pad(styles.Truncate(label, nameWidth), max(nameWidth, 0)))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, glyph, " ", name, " ", volume)
	return styles.NowPlayingStyle.Width(max(n.width-styles.NowPlayingStyle.GetHorizontalBorderSize(), 0)).Render(row)
}
