package importer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bogem/id3v2"

	"github.com/handiism/music-universe/internal/model"
)

func writeTaggedFile(t *testing.T, path string, edit func(tag *id3v2.Tag)) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	edit(tag)
	if err := tag.Save(); err != nil {
		t.Fatal(err)
	}
}

func frontCover(data []byte) id3v2.PictureFrame {
	return id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/png",
		PictureType: id3v2.PTFrontCover,
		Picture:     data,
	}
}

func TestImporter_Run(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	writeTaggedFile(t, filepath.Join(src, "a", "01.mp3"), func(tag *id3v2.Tag) {
		tag.SetTitle("One Summer's Day")
		tag.SetArtist("Joe Hisaishi")
		tag.SetAlbum("Spirited Away")
		tag.SetGenre("原声带, 钢琴")
		tag.AddAttachedPicture(frontCover([]byte("png-1")))
	})
	writeTaggedFile(t, filepath.Join(src, "a", "02.mp3"), func(tag *id3v2.Tag) {
		tag.SetTitle("The Name of Life")
		tag.SetArtist("Joe Hisaishi")
		tag.SetAlbum("Spirited Away")
		tag.SetGenre("OST")
		tag.AddAttachedPicture(frontCover([]byte("png-1")))
	})
	writeTaggedFile(t, filepath.Join(src, "b.MP3"), func(tag *id3v2.Tag) {
		tag.SetTitle("Strobe")
		tag.SetArtist("deadmau5 & Kaskade")
		tag.SetGenre("电音")
	})
	if err := os.WriteFile(filepath.Join(src, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	var (
		mu     sync.Mutex
		events []ProgressEvent
	)
	im := New(2, func(e ProgressEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	res, err := im.Run(context.Background(), src, out)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Tracks != 3 || res.Skipped != 0 || res.Covers != 1 {
		t.Errorf("Result = %+v, want 3 tracks, 0 skipped, 1 cover", res)
	}
	if len(events) == 0 || events[len(events)-1].Level != LevelSuccess {
		t.Error("last progress event should report success")
	}

	data, err := os.ReadFile(filepath.Join(out, TracksFile))
	if err != nil {
		t.Fatal(err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("data.json is not an array: %v", err)
	}
	first, err := model.DecodeTrack(raw[0])
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != "1" || first.Title != "One Summer's Day" || first.Note != "原声带, 钢琴" {
		t.Errorf("first record = %+v", first)
	}
	if first.Cover != "covers/Joe Hisaishi - Spirited Away.png" {
		t.Errorf("cover = %q", first.Cover)
	}
	if _, err := model.ParseDate(first.Date, nil); err != nil {
		t.Errorf("date %q is not an archive date: %v", first.Date, err)
	}

	cover, err := os.ReadFile(filepath.Join(out, "covers", "Joe Hisaishi - Spirited Away.png"))
	if err != nil || string(cover) != "png-1" {
		t.Errorf("cover file = %q, %v", cover, err)
	}

	aggData, err := os.ReadFile(filepath.Join(out, AggregatesFile))
	if err != nil {
		t.Fatal(err)
	}
	var counts model.AggregateCounts
	if err := json.Unmarshal(aggData, &counts); err != nil {
		t.Fatal(err)
	}
	if counts.ArtistCounts["Joe Hisaishi"] != 2 || counts.ArtistCounts["Kaskade"] != 1 {
		t.Errorf("ArtistCounts = %v", counts.ArtistCounts)
	}
	if counts.StyleCounts["原声"] != 2 || counts.StyleCounts["电子乐"] != 1 {
		t.Errorf("StyleCounts = %v", counts.StyleCounts)
	}
}

func TestImporter_Run_MissingSource(t *testing.T) {
	_, err := New(1, nil).Run(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir())
	if err == nil {
		t.Error("Run() should fail for a missing source folder")
	}
}
