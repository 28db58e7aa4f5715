// Package importer builds the catalog data files from a local music
// folder: data.json from the ID3 tags of every MP3 file, the matching
// aggregated_data.json, and the embedded front covers.
//
//	im := importer.New(4, func(e importer.ProgressEvent) { fmt.Println(e.Message) })
//	res, err := im.Run(ctx, "/music", "/srv/site/data")
package importer
