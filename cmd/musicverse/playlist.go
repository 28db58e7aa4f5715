package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/handiism/music-universe/internal/audio"
	ioutils "github.com/handiism/music-universe/internal/io"
)

func newPlaylistCmd() *cobra.Command {
	var (
		kind     string
		output   string
		extended bool
	)

	cmd := &cobra.Command{
		Use:   "playlist <tag>",
		Short: "Export the tracks of a tag as a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := audio.ParseFormat(kind)
			if err != nil {
				return err
			}
			view, err := loadView(cmd)
			if err != nil {
				return err
			}

			tag := args[0]
			tracks := view.TracksWithTag(tag)
			if len(tracks) == 0 {
				return fmt.Errorf("unknown tag: %s", tag)
			}

			content := audio.NewPlaylistCreator(format, extended).CreatePlaylist(tag, tracks)
			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}

			if info, err := os.Stat(output); err == nil && info.IsDir() {
				output = filepath.Join(output, ioutils.SanitizeFileName(tag)+format.Ext())
			}
			if err := ioutils.WriteFileAtomic(cmd.Context(), output, []byte(content)); err != nil {
				return err
			}
			logger.Info("playlist written", "path", output, "tracks", len(tracks))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "m3u", "Playlist type: m3u, pls, wpl or zpl")
	cmd.Flags().StringVarP(&output, "output", "o", "", "File or directory to write (default: stdout)")
	cmd.Flags().BoolVar(&extended, "extended", true, "Write extended M3U")

	return cmd
}
