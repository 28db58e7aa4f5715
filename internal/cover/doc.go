// Package cover resolves and thumbnails track cover art.
//
// Resolution picks the first non-blank of the mobile cover, the cover
// and a fallback. The Service turns the chosen image into a JPEG
// thumbnail:
//
//	svc := cover.NewService(settings.CoverDir, settings.ThumbnailMaxSize, client, logger)
//	thumb, err := svc.TrackThumbnail(ctx, &track, false)
package cover
