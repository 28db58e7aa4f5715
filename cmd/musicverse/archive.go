package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/handiism/music-universe/internal/archive"
)

func newArchiveCmd() *cobra.Command {
	var (
		format string
		year   int
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Show the archive timeline grouped by year and month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			view, err := loadView(cmd)
			if err != nil {
				return err
			}

			tl := archive.Build(view.Tracks, time.Local, time.Now())
			if year != 0 {
				var years []archive.Year
				for _, y := range tl.Years {
					if y.Year == year {
						years = append(years, y)
					}
				}
				tl.Years = years
			}
			if format == formatJSON {
				return outputJSON(cmd, tl)
			}

			out := cmd.OutOrStdout()
			if tl.Latest != nil {
				fmt.Fprintf(out, "Latest: %s · %s (%s)\n", tl.Latest.Track.Title, tl.Latest.Track.Artist, tl.Latest.Time.Format("2006-01-02"))
				fmt.Fprintf(out, "%d tracks archived over %d days, %d undated\n\n", tl.Total, tl.DaysSinceFirst, tl.Undated)
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"Year", "Month", "Date", "Title", "Artist"})
			for _, y := range tl.Years {
				for _, m := range y.Months {
					for _, e := range m.Entries {
						t.AppendRow(table.Row{y.Year, m.Month.String(), e.Time.Format("01-02 15:04"), cell(e.Track.Title), cell(e.Track.Artist)})
					}
				}
				t.AppendSeparator()
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	cmd.Flags().IntVar(&year, "year", 0, "Only show this year")

	return cmd
}
