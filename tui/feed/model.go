package feed

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rinser/feedtail/app"
	"github.com/rinser/feedtail/domain"
	"github.com/rinser/feedtail/tui/common"
)

// RejectNotice is shown when the page URL carries no usable user id.
const RejectNotice = "URI path should contain query parameter userId!"

// State is the controller lifecycle.
type State int

const (
	// StateUninitialized is the zero Model before New.
	StateUninitialized State = iota
	// StateActive runs from a valid page until the program exits.
	StateActive
	// StateRejected shows the blocking notice; no network activity happens.
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateRejected:
		return "rejected"
	default:
		return "uninitialized"
	}
}

// Row is one rendered publication. Cells are plain text.
type Row struct {
	Author string
	Text   string
	At     string
}

func rowFrom(p domain.Publication) Row {
	return Row{
		Author: common.PlainText(p.Author.String()),
		Text:   common.PlainText(p.Text.String()),
		At:     common.PlainText(p.At.String()),
	}
}

// --- Messages ---

// SnapshotLoadedMsg is sent when the feed snapshot fetch completes.
type SnapshotLoadedMsg struct {
	Publications domain.Snapshot
}

// SnapshotErrorMsg is sent when the feed snapshot fetch fails.
type SnapshotErrorMsg struct {
	Err error
}

// StreamOpenedMsg is sent once the live stream is connected.
type StreamOpenedMsg struct {
	Sub app.Subscription
}

// StreamErrorMsg is sent when the live stream cannot be opened or ends.
type StreamErrorMsg struct {
	Err error
}

// PublicationReceivedMsg carries one publication from the live stream.
type PublicationReceivedMsg struct {
	Publication domain.Publication
}

// PublicationErrorMsg reports a stream message that could not be decoded.
// The stream stays open.
type PublicationErrorMsg struct {
	Err error
}

// --- Model ---

// Model drives the feed page: snapshot first, then the live stream.
type Model struct {
	snapshot app.SnapshotService
	stream   app.StreamService
	page     domain.Page
	pageErr  error
	log      *zerolog.Logger

	state   State
	rows    []Row // Display order, top row first.
	sub     app.Subscription
	live    bool
	loading bool
	skipped int // Malformed stream messages dropped.
	err     error
	status  string

	keys    common.KeyMap
	spinner spinner.Model
	offset  int
	width   int
	height  int
}

// New creates a feed model with injected dependencies. A non-nil pageErr
// puts the model in StateRejected.
func New(snapshot app.SnapshotService, stream app.StreamService, page domain.Page, pageErr error, logger *zerolog.Logger) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	m := Model{
		snapshot: snapshot,
		stream:   stream,
		page:     page,
		pageErr:  pageErr,
		log:      logger,
		keys:     common.DefaultKeyMap(),
		spinner:  s,
	}
	if pageErr != nil || page.UserID == "" {
		if m.pageErr == nil {
			m.pageErr = domain.ErrMissingUserID
		}
		m.state = StateRejected
		return m
	}
	m.state = StateActive
	m.loading = true
	return m
}

// Init starts the snapshot fetch. A rejected page issues no commands.
func (m Model) Init() tea.Cmd {
	if m.state != StateActive {
		return nil
	}
	m.log.Info().Str("user_id", m.page.UserID).Str("host", m.page.Hostname).Msg("loading feed")
	return tea.Batch(
		m.fetchSnapshot(),
		m.spinner.Tick,
	)
}

// Close releases the live stream, if open.
func (m Model) Close() error {
	if m.sub == nil {
		return nil
	}
	return m.sub.Close()
}

// insertAfterHeader places rows directly below the header, keeping their order.
func (m *Model) insertAfterHeader(rows ...Row) {
	if len(rows) == 0 {
		return
	}
	merged := make([]Row, 0, len(rows)+len(m.rows))
	merged = append(merged, rows...)
	m.rows = append(merged, m.rows...)
}

// Rows returns the rendered rows, top to bottom below the header.
func (m Model) Rows() []Row {
	return m.rows
}

// State returns the lifecycle state.
func (m Model) State() State {
	return m.state
}

// Err returns the current error, if any.
func (m Model) Err() error {
	return m.err
}

// StreamLive reports whether the live stream is open.
func (m Model) StreamLive() bool {
	return m.live
}

// Loading returns whether the snapshot is still being fetched.
func (m Model) Loading() bool {
	return m.loading
}

// Skipped returns how many malformed stream messages were dropped.
func (m Model) Skipped() int {
	return m.skipped
}
