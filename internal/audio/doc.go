// Package audio reads ID3 tags from MP3 files and renders playlists of
// catalog tracks.
//
// # ID3 Tags
//
// ReadTags extracts the fields the importer turns into catalog records:
//
//	ft, err := audio.ReadTags("/music/song.mp3")
//	// ft.Title, ft.Artist, ft.Album
//	// ft.Genre becomes the note, ft.Cover the cover file
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("原声", view.TracksWithTag("原声"))
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
