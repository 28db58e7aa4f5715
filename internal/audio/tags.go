package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
)

// FileTags holds the ID3 metadata the importer reads from an MP3 file.
type FileTags struct {
	// Path is the file the tags were read from.
	Path string

	Title  string
	Artist string
	Album  string

	// Genre is the TCON frame; it becomes the catalog note.
	Genre string

	// Year is the TYER frame, or the year part of TDRC.
	Year string

	// Comment is the first COMM frame, if any.
	Comment string

	// Cover is the front cover picture (APIC), or any picture when there
	// is no front cover. Nil when the file has none.
	Cover     []byte
	CoverMIME string

	// ModTime is the file modification time, used as the archive date.
	ModTime int64
}

// ReadTags reads the ID3 tags of an MP3 file.
//
// Missing frames leave their fields empty; a file without any tag yields
// a FileTags whose Title is the file name without extension.
//
// Example:
//
//	ft, err := ReadTags("/music/Joe Hisaishi - One Summer's Day.mp3")
//	fmt.Println(ft.Title, ft.Artist, ft.Genre)
func ReadTags(path string) (*FileTags, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	ft := &FileTags{
		Path:    path,
		Title:   strings.TrimSpace(tag.Title()),
		Artist:  strings.TrimSpace(tag.Artist()),
		Album:   strings.TrimSpace(tag.Album()),
		Genre:   strings.TrimSpace(tag.Genre()),
		Year:    readYear(tag),
		ModTime: info.ModTime().Unix(),
	}
	if ft.Title == "" {
		ft.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	for _, f := range tag.GetFrames(tag.CommonID("Comments")) {
		if cf, ok := f.(id3v2.CommentFrame); ok && strings.TrimSpace(cf.Text) != "" {
			ft.Comment = strings.TrimSpace(cf.Text)
			break
		}
	}

	ft.Cover, ft.CoverMIME = readCover(tag)

	return ft, nil
}

func readYear(tag *id3v2.Tag) string {
	if y := strings.TrimSpace(tag.Year()); y != "" {
		return y
	}
	if tdrc := strings.TrimSpace(tag.GetTextFrame("TDRC").Text); len(tdrc) >= 4 {
		return tdrc[:4]
	}
	return ""
}

func readCover(tag *id3v2.Tag) ([]byte, string) {
	var fallback *id3v2.PictureFrame
	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok || len(pic.Picture) == 0 {
			continue
		}
		if pic.PictureType == id3v2.PTFrontCover {
			return pic.Picture, pic.MimeType
		}
		if fallback == nil {
			fallback = &pic
		}
	}
	if fallback != nil {
		return fallback.Picture, fallback.MimeType
	}
	return nil, ""
}

// CoverExt returns the file extension for a picture MIME type.
func CoverExt(mime string) string {
	switch strings.ToLower(mime) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
