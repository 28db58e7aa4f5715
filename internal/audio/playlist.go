package audio

import (
	"fmt"
	"strings"

	"github.com/handiism/music-universe/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files.
	FormatPLS

	// FormatWPL creates .wpl files.
	FormatWPL

	// FormatZPL creates .zpl files.
	FormatZPL
)

// ParseFormat maps a name such as "m3u" or ".pls" to a PlaylistFormat.
func ParseFormat(name string) (PlaylistFormat, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "", "m3u", "m3u8":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "wpl":
		return FormatWPL, nil
	case "zpl":
		return FormatZPL, nil
	}
	return FormatM3U, fmt.Errorf("unknown playlist format %q", name)
}

// Ext returns the file extension of the format.
func (f PlaylistFormat) Ext() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// ContentType returns the MIME type to serve the format with.
func (f PlaylistFormat) ContentType() string {
	switch f {
	case FormatPLS:
		return "audio/x-scpls"
	case FormatWPL:
		return "application/vnd.ms-wpl"
	case FormatZPL:
		return "application/vnd.ms-zpl"
	default:
		return "audio/x-mpegurl"
	}
}

// PlaylistCreator generates playlists of catalog tracks.
//
// Entries point at each track's preview URL, or its page URL when it has
// no preview. Tracks with neither are left out. Durations are unknown,
// so M3U and PLS use -1.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist("原声", view.TracksWithTag("原声"))
//
//	// Result:
//	// #EXTM3U
//	// #PLAYLIST:原声
//	// #EXTINF:-1,Joe Hisaishi - One Summer's Day
//	// https://example.com/preview/1.m4a
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include #EXTINF lines
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only
// affects M3U.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the creator's format.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

type entry struct {
	location string
	title    string
	artist   string
	album    string
}

func playable(tracks []model.Track) []entry {
	var entries []entry
	for i := range tracks {
		loc := model.FirstNonEmpty(tracks[i].PreviewURL, tracks[i].URL)
		if loc == "" {
			continue
		}
		entries = append(entries, entry{
			location: strings.TrimSpace(loc),
			title:    tracks[i].Title,
			artist:   tracks[i].Artist,
			album:    tracks[i].Album,
		})
	}
	return entries
}

// CreatePlaylist renders a playlist named title.
func (p *PlaylistCreator) CreatePlaylist(title string, tracks []model.Track) string {
	entries := playable(tracks)
	switch p.format {
	case FormatPLS:
		return p.createPLS(entries)
	case FormatWPL:
		return p.createWPL(title, entries)
	case FormatZPL:
		return p.createZPL(title, entries)
	default:
		return p.createM3U(title, entries)
	}
}

func (p *PlaylistCreator) createM3U(title string, entries []entry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
		if title != "" {
			fmt.Fprintf(&sb, "#PLAYLIST:%s\n", oneLine(title))
		}
	}

	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:-1,%s\n", oneLine(displayName(e)))
		}
		sb.WriteString(e.location + "\n")
	}

	return sb.String()
}

func (p *PlaylistCreator) createPLS(entries []entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.location)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, oneLine(displayName(e)))
		fmt.Fprintf(&sb, "Length%d=-1\n", idx)
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (p *PlaylistCreator) createWPL(title string, entries []entry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(e.location))
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")

	return sb.String()
}

func (p *PlaylistCreator) createZPL(title string, entries []entry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("    <meta name=\"Generator\" content=\"MusicUniverse\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\"/>\n",
			escapeXML(e.location), escapeXML(e.album), escapeXML(e.title), escapeXML(e.artist))
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")

	return sb.String()
}

func displayName(e entry) string {
	if e.artist == "" {
		return e.title
	}
	return e.artist + " - " + e.title
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func oneLine(s string) string {
	return lineBreaks.Replace(s)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
