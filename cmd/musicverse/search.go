package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/handiism/music-universe/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		format  string
		artist  string
		artists bool
	)

	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Search tracks by title, album, artist or note",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			view, err := loadView(cmd)
			if err != nil {
				return err
			}
			s := search.New(view.Tracks)

			if artists {
				list := s.Artists()
				if format == formatJSON {
					return outputJSON(cmd, list)
				}
				t := newTable(cmd)
				t.AppendHeader(table.Row{"Artist", "Tracks"})
				for _, a := range list {
					t.AppendRow(table.Row{cell(a.Name), a.Count})
				}
				t.Render()
				return nil
			}

			q := search.Query{Text: strings.Join(args, " "), Artist: artist}
			results := s.Search(q)
			if format == formatJSON {
				return outputJSON(cmd, results)
			}

			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tracks found.")
				if suggestions := s.Suggestions(artist); artist != "" && len(suggestions) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Did you mean: %s\n", strings.Join(suggestions, ", "))
				}
				return nil
			}
			renderTracks(cmd, results)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	cmd.Flags().StringVar(&artist, "artist", "", "Only tracks by this artist")
	cmd.Flags().BoolVar(&artists, "artists", false, "List artists with their track counts instead")

	return cmd
}
