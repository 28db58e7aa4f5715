// Package tui provides a Bubble Tea tag explorer for the music catalog.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/music-universe/internal/catalog"
	"github.com/handiism/music-universe/internal/model"
	"github.com/handiism/music-universe/internal/tags"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)
)

// State represents the current UI state.
type State int

const (
	StateLoading State = iota
	StateTags
	StateDetail
	StateError
)

// pageSize is how many tags are listed at once.
const pageSize = 15

// Model is the Bubble Tea model for the tag explorer.
type Model struct {
	state    State
	store    *catalog.Store
	spinner  spinner.Model
	filter   textinput.Model
	progress progress.Model

	view     *catalog.View
	ranked   []tags.TagCount
	filtered []tags.TagCount
	cursor   int
	selected string
	err      error

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewModel creates a tag explorer reading from store.
func NewModel(store *catalog.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "filter tags"
	ti.CharLimit = 64
	ti.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateLoading,
		store:    store,
		spinner:  sp,
		filter:   ti,
		progress: prog,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(false))
}

// Message types
type (
	// LoadedMsg is sent when a load or refetch finishes.
	LoadedMsg struct {
		View *catalog.View
		Err  error
	}
)

// load fetches the snapshot in the background.
func (m Model) load(refetch bool) tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		var (
			v   *catalog.View
			err error
		)
		if refetch {
			v, err = store.Refetch(ctx)
		} else {
			v, err = store.Load(ctx)
		}
		return LoadedMsg{View: v, Err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-30, 20), 60)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
		if m.filter.Focused() {
			return m.updateFilter(msg)
		}
		if cmd, quit := m.handleKey(msg); quit {
			return m, tea.Quit
		} else if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case LoadedMsg:
		switch {
		case msg.Err == nil:
			m.setView(msg.View)
		case catalog.IsCancelled(msg.Err):
			// Quitting; nothing to show.
		case m.view != nil:
			// A failed refetch keeps the previous snapshot.
			m.err = msg.Err
			m.state = StateTags
		default:
			m.err = msg.Err
			m.state = StateError
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch m.state {
	case StateTags:
		switch msg.String() {
		case "q", "esc":
			m.cancel()
			return nil, true
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
		case "/":
			m.filter.Focus()
			return textinput.Blink, false
		case "enter":
			if len(m.filtered) > 0 {
				m.selected = m.filtered[m.cursor].Tag
				m.state = StateDetail
			}
		case "r":
			m.state = StateLoading
			m.err = nil
			return tea.Batch(m.spinner.Tick, m.load(true)), false
		}

	case StateDetail:
		switch msg.String() {
		case "q":
			m.cancel()
			return nil, true
		case "esc", "backspace":
			m.state = StateTags
		case "tab":
			// Jump to the first related tag.
			if related := m.view.Tags.Related(m.selected); len(related) > 0 {
				m.selected = related[0]
			}
		}

	case StateError:
		switch msg.String() {
		case "q", "esc":
			m.cancel()
			return nil, true
		case "r":
			if catalog.IsRetryable(m.err) {
				m.state = StateLoading
				m.err = nil
				return tea.Batch(m.spinner.Tick, m.load(true)), false
			}
		}
	}
	return nil, false
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filter.Blur()
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) setView(v *catalog.View) {
	m.view = v
	m.ranked = v.Tags.Ranked()
	m.err = nil
	m.applyFilter()
	if m.state != StateDetail || v.Tags.Count(m.selected) == 0 {
		m.state = StateTags
	}
}

func (m *Model) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.filtered = m.filtered[:0]
	for _, tc := range m.ranked {
		if q == "" || strings.Contains(strings.ToLower(tc.Tag), q) {
			m.filtered = append(m.filtered, tc)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ Music Universe"))
	b.WriteString("\n")

	switch m.state {
	case StateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Loading catalog..."))
		b.WriteString("\n")
	case StateTags:
		b.WriteString(m.viewTags())
	case StateDetail:
		b.WriteString(m.viewDetail())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewTags() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", infoStyle.Render(fmt.Sprintf("%d tracks · %d tags", len(m.view.Tracks), len(m.ranked))))
	if m.err != nil {
		b.WriteString(warningStyle.Render("! refresh failed, showing previous data: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("  no tags"))
		b.WriteString("\n")
		return b.String()
	}

	start := 0
	if m.cursor >= pageSize {
		start = m.cursor - pageSize + 1
	}
	end := min(start+pageSize, len(m.filtered))
	for i := start; i < end; i++ {
		tc := m.filtered[i]
		line := fmt.Sprintf("%-20s %4d", tc.Tag, tc.Count)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewDetail() string {
	var b strings.Builder

	count := m.view.Tags.Count(m.selected)
	share := 0.0
	if n := len(m.view.Tracks); n > 0 {
		share = float64(count) / float64(n)
	}

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("# %s  (%d tracks)", m.selected, count)))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(share))
	b.WriteString("\n\n")

	if related := m.view.Tags.Related(m.selected); len(related) > 0 {
		b.WriteString(infoStyle.Render("Related: " + strings.Join(related, ", ")))
		b.WriteString("\n\n")
	}

	var lines []string
	for _, t := range m.view.TracksWithTag(m.selected) {
		lines = append(lines, trackLine(t))
	}
	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	return b.String()
}

func trackLine(t model.Track) string {
	line := fmt.Sprintf("%s · %s", t.Title, t.Artist)
	if t.Album != "" {
		line += dimStyle.Render(" (" + t.Album + ")")
	}
	return line
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Could not load the catalog"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s\n", m.err.Error()))
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateLoading:
		return "ctrl+c: quit"
	case StateTags:
		if m.filter.Focused() {
			return "enter: apply • esc: clear"
		}
		return "↑/↓: move • enter: open • /: filter • r: refetch • q: quit"
	case StateDetail:
		return "tab: related tag • esc: back • q: quit"
	case StateError:
		if catalog.IsRetryable(m.err) {
			return "r: retry • q: quit"
		}
		return "q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(store *catalog.Store) error {
	p := tea.NewProgram(NewModel(store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
