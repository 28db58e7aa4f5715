package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/mock/gomock"

	"github.com/handiism/music-universe/internal/catalog"
	"github.com/handiism/music-universe/internal/catalog/mocks"
	"github.com/handiism/music-universe/internal/logging"
)

const testTracks = `[
	{"id": 1, "title": "Merry-Go-Round", "artist": "Joe Hisaishi", "note": "原声, 钢琴"},
	{"id": 2, "title": "Summer", "artist": "Joe Hisaishi", "note": "OST"},
	{"id": 3, "title": "Autumn Leaves", "artist": "Bill Evans", "note": "爵士"}
]`

var sources = catalog.Sources{Tracks: []string{"tracks"}, Aggregates: []string{"aggregates"}}

func newStore(t *testing.T, tracksErr error) *catalog.Store {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := mocks.NewMockFetcher(ctrl)

	if tracksErr != nil {
		f.EXPECT().FetchJSON(gomock.Any(), sources.Tracks).Return(nil, tracksErr).AnyTimes()
	} else {
		f.EXPECT().FetchJSON(gomock.Any(), sources.Tracks).Return(json.RawMessage(testTracks), nil).AnyTimes()
	}
	f.EXPECT().FetchJSON(gomock.Any(), sources.Aggregates).Return(json.RawMessage(`{}`), nil).AnyTimes()

	return catalog.NewStore(f, catalog.NewCache(), sources, catalog.Options{Logger: logging.Discard()})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.load(false)()
	m, _ = update(t, m, msg)
	return m
}

func TestModel_LoadsRankedTags(t *testing.T) {
	m := loaded(t, NewModel(newStore(t, nil)))

	if m.state != StateTags {
		t.Fatalf("state = %v, want StateTags", m.state)
	}
	if len(m.filtered) != 3 {
		t.Fatalf("got %d tags, want 3", len(m.filtered))
	}
	if got := m.filtered[0]; got.Tag != "原声" || got.Count != 2 {
		t.Errorf("top tag = %+v, want 原声 x2", got)
	}
	if !strings.Contains(m.View(), "3 tracks") {
		t.Errorf("view does not show the track count:\n%s", m.View())
	}
}

func TestModel_DetailShowsRelatedAndTracks(t *testing.T) {
	m := loaded(t, NewModel(newStore(t, nil)))

	m, _ = update(t, m, key("enter"))
	if m.state != StateDetail || m.selected != "原声" {
		t.Fatalf("state = %v, selected = %q", m.state, m.selected)
	}

	out := m.View()
	for _, want := range []string{"Related: 钢琴", "Merry-Go-Round", "Summer"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail view missing %q", want)
		}
	}
	if strings.Contains(out, "Autumn Leaves") {
		t.Error("detail view lists a track without the tag")
	}

	m, _ = update(t, m, key("tab"))
	if m.selected != "钢琴" {
		t.Errorf("tab selected %q, want 钢琴", m.selected)
	}

	m, _ = update(t, m, key("esc"))
	if m.state != StateTags {
		t.Errorf("esc: state = %v, want StateTags", m.state)
	}
}

func TestModel_Filter(t *testing.T) {
	m := loaded(t, NewModel(newStore(t, nil)))

	m, _ = update(t, m, key("/"))
	if !m.filter.Focused() {
		t.Fatal("filter not focused")
	}
	m, _ = update(t, m, key("爵"))
	if len(m.filtered) != 1 || m.filtered[0].Tag != "爵士" {
		t.Fatalf("filtered = %+v, want [爵士]", m.filtered)
	}

	m, _ = update(t, m, key("esc"))
	if m.filter.Focused() || len(m.filtered) != 3 {
		t.Errorf("esc should clear the filter, got %d tags", len(m.filtered))
	}
}

func TestModel_NetworkErrorOffersRetry(t *testing.T) {
	m := loaded(t, NewModel(newStore(t, errors.New("connection refused"))))

	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if !catalog.IsRetryable(m.err) {
		t.Fatalf("err = %v, want retryable", m.err)
	}
	if !strings.Contains(m.View(), "r: retry") {
		t.Error("error view does not offer a retry")
	}

	m, cmd := update(t, m, key("r"))
	if m.state != StateLoading || cmd == nil {
		t.Errorf("retry: state = %v, cmd = %v", m.state, cmd)
	}
}

func TestModel_FailedRefetchKeepsView(t *testing.T) {
	m := loaded(t, NewModel(newStore(t, nil)))

	m, _ = update(t, m, LoadedMsg{Err: &catalog.LoadError{Kind: catalog.KindNetwork, Retryable: true}})
	if m.state != StateTags || m.view == nil {
		t.Fatalf("state = %v, view = %v", m.state, m.view)
	}
	if !strings.Contains(m.View(), "refresh failed") {
		t.Error("view does not report the failed refresh")
	}
}

func TestModel_CancelledLoadIsSilent(t *testing.T) {
	m := NewModel(newStore(t, nil))
	m, _ = update(t, m, LoadedMsg{Err: context.Canceled})

	if m.state != StateLoading || m.err != nil {
		t.Errorf("state = %v, err = %v", m.state, m.err)
	}
}
