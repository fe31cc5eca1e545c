package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rinser/feedtail/app"
	"github.com/rinser/feedtail/domain"
	"github.com/rinser/feedtail/tui/common"
	"github.com/rinser/feedtail/tui/feed"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
// Snapshot and Stream may be nil when PageErr is set.
type Deps struct {
	Page     domain.Page
	PageErr  error
	Snapshot app.SnapshotService
	Stream   app.StreamService
	Log      *zerolog.Logger
}

// App is the root Bubble Tea model. It owns global keys and the status bar.
type App struct {
	feed feed.Model
	keys common.KeyMap
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	return App{
		feed: feed.New(deps.Snapshot, deps.Stream, deps.Page, deps.PageErr, deps.Log),
		keys: common.DefaultKeyMap(),
	}
}

// Init delegates to the feed model.
func (a App) Init() tea.Cmd {
	return a.feed.Init()
}

// Update handles global keys and routes everything else to the feed.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, a.keys.Quit) {
		_ = a.feed.Close()
		return a, tea.Quit
	}

	updated, cmd := a.feed.Update(msg)
	a.feed = updated
	return a, cmd
}

// View renders the feed plus the status bar.
func (a App) View() string {
	s := a.feed.View()
	if a.feed.State() == feed.StateRejected {
		return s
	}

	status := a.feed.StatusLine()
	help := common.HelpLine(a.keys.Up, a.keys.Down, a.keys.Top, a.keys.Quit)
	s += common.StatusBarStyle.Render(status) + "\n " + common.OfflineStyle.Render(help)
	return s
}

// Feed exposes the feed model for inspection.
func (a App) Feed() feed.Model {
	return a.feed
}
