package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/music-universe/internal/importer"
)

func newImportCmd() *cobra.Command {
	var (
		output      string
		concurrency int
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "import <music-dir>",
		Short: "Build the catalog data files from a folder of MP3 files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = settings.DataDir
			}
			out := cmd.OutOrStdout()

			im := importer.New(concurrency, func(event importer.ProgressEvent) {
				if event.Level == importer.LevelVerbose && !verbose {
					return
				}

				prefix := ""
				switch event.Level {
				case importer.LevelError:
					prefix = "❌ "
				case importer.LevelWarning:
					prefix = "⚠️  "
				case importer.LevelSuccess:
					prefix = "✅ "
				case importer.LevelInfo:
					prefix = "ℹ️  "
				default:
					prefix = "   "
				}

				fmt.Fprintln(out, prefix+event.Message)
			})

			if _, err := im.Run(cmd.Context(), args[0], output); err != nil {
				if cmd.Context().Err() != nil {
					return fmt.Errorf("import cancelled")
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default: data_dir from settings)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Files read in parallel")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	return cmd
}
