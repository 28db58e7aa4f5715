package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/handiism/music-universe/internal/model"
)

func newTagsCmd() *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "tags [tag]",
		Short: "List style tags, or show one tag with its related tags and tracks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			view, err := loadView(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				return showTag(cmd, format, args[0], view.Tags.Count(args[0]), view.Tags.Related(args[0]), view.TracksWithTag(args[0]))
			}

			ranked := view.Tags.Ranked()
			if limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}
			if format == formatJSON {
				return outputJSON(cmd, ranked)
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"#", "Tag", "Tracks", "Related"})
			for i, tc := range ranked {
				t.AppendRow(table.Row{i + 1, tc.Tag, tc.Count, len(view.Tags.Related(tc.Tag))})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many tags (0 = all)")

	return cmd
}

type tagOutput struct {
	Tag     string        `json:"tag"`
	Count   int           `json:"count"`
	Related []string      `json:"related"`
	Tracks  []model.Track `json:"tracks"`
}

func showTag(cmd *cobra.Command, format, tag string, count int, related []string, tracks []model.Track) error {
	if count == 0 {
		return fmt.Errorf("unknown tag: %s", tag)
	}
	if format == formatJSON {
		return outputJSON(cmd, tagOutput{Tag: tag, Count: count, Related: related, Tracks: tracks})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s (%d tracks)\n", tag, count)
	if len(related) > 0 {
		fmt.Fprintf(out, "Related: %s\n", strings.Join(related, ", "))
	}
	fmt.Fprintln(out)

	renderTracks(cmd, tracks)
	return nil
}

func renderTracks(cmd *cobra.Command, tracks []model.Track) {
	t := newTable(cmd)
	t.AppendHeader(table.Row{"ID", "Title", "Artist", "Album", "Tags"})
	for _, tr := range tracks {
		t.AppendRow(table.Row{tr.ID, cell(tr.Title), cell(tr.Artist), cell(tr.Album), cell(strings.Join(tr.Tags, ", "))})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(tracks)})
	t.Render()
}
