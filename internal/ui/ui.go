package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/services"
	"github.com/desertthunder/lyriq/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	TrackListView
	AnalyzeView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	search        services.SearchService
	engine        *tasks.AnalysisEngine
	width         int
	height        int
	searchInput   textinput.Model
	trackList     list.Model
	tracks        []models.Track
	selectedTrack *models.Track
	spinner       spinner.Model
	resultView    viewport.Model
	outcome       *tasks.AnalysisOutcome
	err           error
	help          help.Model
	keys          keyMap
}

type tracksFetchedMsg struct {
	tracks []models.Track
	err    error
}

type analysisCompleteMsg struct {
	outcome *tasks.AnalysisOutcome
	err     error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, search services.SearchService, engine *tasks.AnalysisEngine) *Model {
	input := textinput.New()
	input.Placeholder = "Song title or artist..."
	input.Focus()
	input.CharLimit = 200
	input.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	return &Model{
		ctx:         ctx,
		view:        SearchView,
		search:      search,
		engine:      engine,
		searchInput: input,
		spinner:     sp,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init starts the cursor blink in the search field.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		m.resultView.Width = msg.Width - 4
		m.resultView.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case AnalyzeView:
			return m.handleAnalyzeKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = SearchView
			return m, nil
		}
		m.err = nil
		m.tracks = msg.tracks
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Results for '%s'", m.searchInput.Value())
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case analysisCompleteMsg:
		m.outcome = msg.outcome
		m.err = msg.err
		m.resultView = viewport.New(m.width-4, m.height-6)
		m.resultView.SetContent(m.renderAnalysis())
		m.view = ResultView
		return m, nil

	case spinner.TickMsg:
		if m.view == AnalyzeView {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case TrackListView:
		return m.renderTrackList()
	case AnalyzeView:
		return m.renderAnalyzing()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		return m, m.fetchTracks(query)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SearchView
		return m, textinput.Blink
	case "enter":
		selected := m.trackList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(trackItem); ok {
				m.selectedTrack = &item.track
				m.view = AnalyzeView
				return m, tea.Batch(m.spinner.Tick, m.analyzeTrack(item.track, false))
			}
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleAnalyzeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = TrackListView
		return m, nil
	case "r":
		if m.selectedTrack != nil {
			m.view = AnalyzeView
			return m, tea.Batch(m.spinner.Tick, m.analyzeTrack(*m.selectedTrack, true))
		}
		return m, nil
	case "/":
		m.view = SearchView
		m.searchInput.SetValue("")
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.resultView, cmd = m.resultView.Update(msg)
	return m, cmd
}

func (m *Model) fetchTracks(query string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.search.Search(m.ctx, query)
		return tracksFetchedMsg{tracks: tracks, err: err}
	}
}

func (m *Model) analyzeTrack(track models.Track, force bool) tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.engine.Analyze(m.ctx, track, force)
		return analysisCompleteMsg{outcome: outcome, err: err}
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Search for a song")

	var errView string
	if m.err != nil {
		errView = styles.err.Render(fmt.Sprintf("Error: %v\n", m.err))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n\n%s\n\n%s%s", title, m.searchInput.View(), errView, helpView)
}

func (m *Model) renderTrackList() string {
	analyzeKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "analyze"),
	)
	helpKeys := []key.Binding{analyzeKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderAnalyzing() string {
	if m.selectedTrack == nil {
		return ""
	}
	return fmt.Sprintf("\n %s Analyzing '%s' by %s...\n\n %s",
		m.spinner.View(),
		m.selectedTrack.Title,
		m.selectedTrack.Artist,
		styles.help.Render("reading lyrics and interpreting, this can take a minute"),
	)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.regenerate, m.keys.newSearch, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.resultView.View(), helpView)
}

// renderAnalysis formats the analysis outcome for the result viewport.
func (m *Model) renderAnalysis() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Analysis failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.outcome == nil || m.outcome.Document == nil {
		return styles.err.Render("No analysis could be generated for this song.\n\nPress r to retry, q to quit")
	}

	doc := m.outcome.Document
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("%s by %s", m.selectedTrack.Title, m.selectedTrack.Artist)))
	b.WriteString("\n")

	if m.outcome.FromCache {
		b.WriteString(styles.help.Render("(cached)"))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n%s %s\n", styles.ok.Render("Vibe:"), doc.Vibe))
	b.WriteString(fmt.Sprintf("\n%s\n", doc.Overview))

	for _, section := range doc.Analysis {
		b.WriteString(fmt.Sprintf("\n%s\n", styles.ok.Render(section.Section)))
		b.WriteString(styles.help.Render(fmt.Sprintf("  \"%s\"\n", section.LyricsQuote)))
		b.WriteString(fmt.Sprintf("  %s\n", section.Content))
	}

	if len(doc.Metaphors) > 0 {
		b.WriteString(fmt.Sprintf("\n%s\n", styles.ok.Render("Metaphors")))
		for _, meta := range doc.Metaphors {
			b.WriteString(fmt.Sprintf("  • %s: %s\n", meta.Phrase, meta.Meaning))
		}
	}

	b.WriteString(fmt.Sprintf("\n%s %s\n", styles.ok.Render("Core message:"), doc.CoreMessage))

	if m.outcome.Video.Status == models.VideoFound && m.outcome.Video.Video != nil {
		b.WriteString(fmt.Sprintf("\n%s https://www.youtube.com/watch?v=%s\n",
			styles.ok.Render("Video:"), m.outcome.Video.Video.VideoID))
	} else if m.outcome.Video.Status == models.VideoFailed {
		b.WriteString(styles.warn.Render("\nVideo lookup failed\n"))
	}

	return b.String()
}
