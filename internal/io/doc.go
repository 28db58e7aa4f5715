// Package ioutils provides file system and image utilities shared by the
// importer and the cover service.
//
// # File Operations
//
//	// Replace a catalog file without exposing partial writes
//	err := ioutils.WriteFileAtomic(ctx, "/srv/data/data.json", payload)
//
//	// Build a safe file name from a tag or title
//	name := ioutils.SanitizeFileName("OST: Vol 1/2") + ".m3u"
//
// # Image Processing
//
// The ImageService turns JPEG, PNG and WebP covers into JPEG thumbnails:
//
//	svc := ioutils.NewImageService()
//	thumb, err := svc.Thumbnail(ctx, coverData, 600)
package ioutils
