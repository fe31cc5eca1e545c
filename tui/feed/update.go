package feed

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rinser/feedtail/domain"
)

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.state != StateActive {
		return m, nil
	}

	switch msg := msg.(type) {
	case SnapshotLoadedMsg:
		m.loading = false
		m.err = nil
		rows := make([]Row, 0, len(msg.Publications))
		for _, p := range msg.Publications.Chronological() {
			rows = append(rows, rowFrom(p))
		}
		m.insertAfterHeader(rows...)
		m.status = "Connecting to live updates..."
		m.log.Info().Int("count", len(rows)).Msg("feed snapshot rendered")
		return m, m.subscribe()

	case SnapshotErrorMsg:
		m.loading = false
		m.err = msg.Err
		m.status = "Feed unavailable, live updates not started."
		m.log.Error().Err(msg.Err).Str("user_id", m.page.UserID).Msg("feed snapshot failed")
		return m, nil

	case StreamOpenedMsg:
		m.sub = msg.Sub
		m.live = true
		m.status = ""
		return m, waitForPublication(m.sub)

	case StreamErrorMsg:
		m.live = false
		if m.sub != nil {
			_ = m.sub.Close()
			m.sub = nil
		}
		if errors.Is(msg.Err, domain.ErrStreamClosed) {
			m.status = "Stream closed by server, no further updates."
			return m, nil
		}
		m.err = msg.Err
		m.status = "Live updates stopped."
		m.log.Error().Err(msg.Err).Str("user_id", m.page.UserID).Msg("live stream failed")
		return m, nil

	case PublicationReceivedMsg:
		m.insertAfterHeader(rowFrom(msg.Publication))
		if m.offset > 0 {
			// Keep the rows being read in place while new ones land on top.
			m.offset++
		}
		if m.sub == nil {
			return m, nil
		}
		return m, waitForPublication(m.sub)

	case PublicationErrorMsg:
		m.skipped++
		m.status = "Skipped malformed publication: " + msg.Err.Error()
		if m.sub == nil {
			return m, nil
		}
		return m, waitForPublication(m.sub)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Any key dismisses the blocking notice.
	if m.state == StateRejected {
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.offset > 0 {
			m.offset--
		}
	case key.Matches(msg, m.keys.Down):
		if m.offset < m.maxOffset() {
			m.offset++
		}
	case key.Matches(msg, m.keys.Top):
		m.offset = 0
	case key.Matches(msg, m.keys.Bottom):
		m.offset = m.maxOffset()
	}
	return m, nil
}

func (m Model) maxOffset() int {
	n := len(m.rows) - m.visibleRows()
	if n < 0 {
		return 0
	}
	return n
}

func (m *Model) clampOffset() {
	if limit := m.maxOffset(); m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
